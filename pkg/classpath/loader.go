package classpath

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/daimatz/classfile/pkg/classfile"
)

// ErrNameMismatch indicates a source returned a class whose this_class does
// not match the requested name.
var ErrNameMismatch = errors.New("classpath: class name mismatch")

// Loader resolves class names against an ordered list of sources and caches
// the decoded result. It is safe for concurrent use; every caller asking for
// the same name gets the same *classfile.Class.
type Loader struct {
	sources []Source

	mu    sync.RWMutex
	cache map[string]*classfile.Class
}

// NewLoader returns a loader that searches sources in order.
func NewLoader(sources ...Source) *Loader {
	return &Loader{
		sources: sources,
		cache:   make(map[string]*classfile.Class),
	}
}

// Load returns the decoded class name, using the first source that holds it.
func (l *Loader) Load(name string) (*classfile.Class, error) {
	l.mu.RLock()
	cf, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return cf, nil
	}

	cf, src, err := l.find(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.cache[name]; ok {
		return cached, nil
	}
	l.cache[name] = cf
	Logger().Debug("class loaded", zap.String("class", name), zap.Stringer("source", stringer{src}))
	return cf, nil
}

func (l *Loader) find(name string) (*classfile.Class, Source, error) {
	for _, src := range l.sources {
		data, err := src.ReadClass(name)
		if errors.Is(err, ErrClassNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		cf, err := classfile.Decode(data)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding %s from %v: %w", name, stringer{src}, err)
		}
		got, err := cf.ClassName()
		if err != nil {
			return nil, nil, fmt.Errorf("decoding %s from %v: %w", name, stringer{src}, err)
		}
		if got != name {
			return nil, nil, fmt.Errorf("%v holds %s under %s: %w", stringer{src}, got, name, ErrNameMismatch)
		}
		return cf, src, nil
	}
	Logger().Debug("class not found", zap.String("class", name), zap.Int("sources", len(l.sources)))
	return nil, nil, fmt.Errorf("%s: %w", name, ErrClassNotFound)
}

// Cached reports how many classes the loader holds.
func (l *Loader) Cached() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

// stringer names a source in logs, falling back to its type.
type stringer struct{ s Source }

func (s stringer) String() string {
	if st, ok := s.s.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", s.s)
}
