package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	apperrors "tally/internal/errors"
	"tally/internal/logger"
)

// FileExt is the extension of ledger container files inside the data
// directory.
const FileExt = ".ledger"

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._ -]*$`)

// Registry maps project names to open ledgers backed by files in a data
// directory. It replaces any notion of a global "current project": callers
// resolve a handle per operation and pass it down explicitly.
type Registry struct {
	dir           string
	migrationsURL string

	mu   sync.Mutex
	open map[string]*Ledger
}

// NewRegistry creates a registry over dir, creating the directory if needed.
func NewRegistry(dir, migrationsURL string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Registry{
		dir:           dir,
		migrationsURL: migrationsURL,
		open:          make(map[string]*Ledger),
	}, nil
}

// ValidateName rejects names that are empty or could escape the data
// directory.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) || strings.Contains(name, "..") {
		return apperrors.ErrInvalidLedgerName
	}
	return nil
}

// List returns the names of all ledger files in the data directory, sorted.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), FileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Create creates a new empty ledger file and opens it. The existence check
// runs under the registry lock so concurrent creates of the same name race
// on the mutex, not on the filesystem: exactly one wins, the rest get
// ErrDuplicateLedger.
func (r *Registry) Create(name string) (*Ledger, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(r.dir, name+FileExt)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.open[name]; ok {
		return nil, apperrors.ErrDuplicateLedger
	}
	if _, err := os.Stat(path); err == nil {
		return nil, apperrors.ErrDuplicateLedger
	}

	return r.openNew(name, path)
}

// Get returns the open ledger for name, opening its file on first use.
// Fails with ErrLedgerNotFound if no such file exists.
func (r *Registry) Get(name string) (*Ledger, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(r.dir, name+FileExt)

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.open[name]; ok {
		return l, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.ErrLedgerNotFound
	}

	return r.openNew(name, path)
}

// openNew migrates and opens the ledger file and caches the handle.
// Callers must hold r.mu.
func (r *Registry) openNew(name, path string) (*Ledger, error) {
	l, err := Open(path, r.migrationsURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	r.open[name] = l
	return l, nil
}

// Close closes every open ledger. Close failures are logged; the handle is
// dropped either way since the registry is shutting down.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, l := range r.open {
		if err := l.Close(); err != nil {
			logger.Get().Warnf("failed to close ledger %s: %v", name, err)
		}
		delete(r.open, name)
	}
}
