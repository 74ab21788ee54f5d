package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/clockwork-mcp/internal/clockwork"
	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// Runner executes a command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

// ArtisanOptions configures NewArtisanStorage.
type ArtisanOptions struct {
	ProjectPath string
	PHPBinary   string
	Timeout     time.Duration
	Runner      Runner
}

// ArtisanStorage reads requests through Clockwork's own storage layer by
// running PHP in `php artisan tinker`. It works with any backend the
// application has configured.
type ArtisanStorage struct {
	opts   ArtisanOptions
	logger zerolog.Logger
}

// NewArtisanStorage creates an ArtisanStorage for the Laravel project at opts.ProjectPath.
func NewArtisanStorage(opts ArtisanOptions, logger zerolog.Logger) *ArtisanStorage {
	if opts.PHPBinary == "" {
		opts.PHPBinary = constants.DefaultPHPBinary
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultArtisanTimeout
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	return &ArtisanStorage{
		opts:   opts,
		logger: logger.With().Str("driver", "artisan").Logger(),
	}
}

// Driver implements Store.
func (s *ArtisanStorage) Driver() string { return "artisan" }

// Location implements Store.
func (s *ArtisanStorage) Location() string { return s.opts.ProjectPath }

// Close implements Store.
func (s *ArtisanStorage) Close() error { return nil }

// Find implements Storage.
func (s *ArtisanStorage) Find(ctx context.Context, id string) (*clockwork.Request, error) {
	if !validID(id) {
		return nil, nil
	}
	code := fmt.Sprintf(`$r = app('clockwork')->storage()->find('%s'); `+
		`echo json_encode(['data' => $r ? $r->toArray() : null]), PHP_EOL;`, id)

	var r *clockwork.Request
	if err := s.execute(ctx, code, &r); err != nil {
		return nil, fmt.Errorf("artisan find %s: %w", id, err)
	}
	return r, nil
}

// FindMany implements Storage in a single PHP invocation.
func (s *ArtisanStorage) FindMany(ctx context.Context, ids []string) ([]*clockwork.Request, error) {
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			quoted = append(quoted, "'"+id+"'")
		}
	}
	if len(quoted) == 0 {
		return []*clockwork.Request{}, nil
	}
	code := fmt.Sprintf(`$s = app('clockwork')->storage(); $out = []; `+
		`foreach ([%s] as $id) { $r = $s->find($id); if ($r) { $out[] = $r->toArray(); } } `+
		`echo json_encode(['data' => $out]), PHP_EOL;`, strings.Join(quoted, ", "))

	var found []*clockwork.Request
	if err := s.execute(ctx, code, &found); err != nil {
		return nil, fmt.Errorf("artisan find: %w", err)
	}
	byID := make(map[string]*clockwork.Request, len(found))
	for _, r := range found {
		if r != nil {
			byID[r.ID] = r
		}
	}
	return orderByIDs(ids, byID), nil
}

// Latest implements Storage.
func (s *ArtisanStorage) Latest(ctx context.Context) (*clockwork.Request, error) {
	const code = `$r = app('clockwork')->storage()->latest(); ` +
		`echo json_encode(['data' => $r ? $r->toArray() : null]), PHP_EOL;`

	var r *clockwork.Request
	if err := s.execute(ctx, code, &r); err != nil {
		return nil, fmt.Errorf("artisan latest: %w", err)
	}
	return r, nil
}

// List implements Storage. It walks latest() and previous() so that SQL
// backed installs are never loaded wholesale.
func (s *ArtisanStorage) List(ctx context.Context) ([]clockwork.IndexEntry, error) {
	code := fmt.Sprintf(`$s = app('clockwork')->storage(); $all = []; $r = $s->latest(); `+
		`if ($r) { $all[] = $r; foreach ($s->previous($r->id, %d) as $p) { $all[] = $p; } } `+
		`$out = array_map(function ($r) { return ['id' => $r->id, 'time' => $r->time, `+
		`'method' => $r->method, 'uri' => $r->uri, 'controller' => $r->controller, `+
		`'responseStatus' => $r->responseStatus, 'responseDuration' => $r->responseDuration, `+
		`'type' => $r->type, 'commandName' => $r->commandName]; }, $all); `+
		`echo json_encode(['data' => $out]), PHP_EOL;`, constants.MaxIndexEntries-1)

	var entries []clockwork.IndexEntry
	if err := s.execute(ctx, code, &entries); err != nil {
		return nil, fmt.Errorf("artisan list: %w", err)
	}
	if entries == nil {
		entries = []clockwork.IndexEntry{}
	}
	return sortEntries(entries), nil
}

// execute runs code in tinker and decodes the "data" member of the JSON envelope into out.
func (s *ArtisanStorage) execute(ctx context.Context, code string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	stdout, err := s.opts.Runner.Run(ctx, s.opts.ProjectPath, s.opts.PHPBinary,
		filepath.Join(s.opts.ProjectPath, constants.ArtisanFile), "tinker", "--execute="+code)
	s.logger.Debug().Dur("elapsed", time.Since(start)).Err(err).Msg("Ran artisan tinker")
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("php timed out after %s: %w", s.opts.Timeout, err)
		}
		return fmt.Errorf("php failed: %w", err)
	}

	line, ok := firstJSONLine(stdout)
	if !ok {
		return fmt.Errorf("no JSON in artisan output")
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return fmt.Errorf("failed to parse artisan output: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode artisan data: %w", err)
	}
	return nil
}

// firstJSONLine returns the first stdout line that starts a JSON object or array.
// Tinker may print warnings or deprecation notices before it.
func firstJSONLine(out []byte) ([]byte, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 && (line[0] == '{' || line[0] == '[') {
			return append([]byte(nil), line...), true
		}
	}
	return nil, false
}

var _ Store = (*ArtisanStorage)(nil)
