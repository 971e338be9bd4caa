package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cardtrack/deckscan/internal/fixed"
)

// Entry is a key's full record: its value plus the bookkeeping fields
// the on-disk format carries alongside it (spec.md §6.5).
type Entry struct {
	Value       Value
	Description string
	Public      bool
}

// Listener is called by Store whenever a key changes, or with key=""
// when a full reload replaced the whole map.
type Listener func(key string)

// Store is the dotted-key/value map the core reads its tunables from.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]Entry
	listeners map[int]Listener
	nextID    int
}

// New returns an empty Store. Callers typically follow with LoadTiers
// to populate it, or use NewWithDefaults instead.
func New() *Store {
	return &Store{
		entries:   make(map[string]Entry),
		listeners: make(map[int]Listener),
	}
}

// Get returns the entry at key, if present.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Set installs a value for key and notifies listeners. Description
// and public carry over from any existing entry unless replaced
// explicitly via SetEntry.
func (s *Store) Set(key string, v Value) {
	s.mu.Lock()
	e := s.entries[key]
	e.Value = v
	s.entries[key] = e
	s.mu.Unlock()
	s.notify(key)
}

// SetEntry installs a full entry for key and notifies listeners.
func (s *Store) SetEntry(key string, e Entry) {
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	s.notify(key)
}

// Keys returns every key currently stored, order unspecified.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Register adds a change listener and returns an id for Unregister.
func (s *Store) Register(l Listener) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return id
}

// Unregister removes a listener previously added by Register.
func (s *Store) Unregister(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

func (s *Store) notify(key string) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()
	for _, l := range listeners {
		l(key)
	}
}

// replaceAll swaps the whole entry map in one step and fires a single
// full-reload notification (key="").
func (s *Store) replaceAll(entries map[string]Entry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	s.notify("")
}

// snapshot copies the current entries for Save.
func (s *Store) snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// fileEntry is the on-disk shape of one Entry (spec.md §6.5: "a single
// object mapping key -> {value, type, description, public}").
type fileEntry struct {
	Value       yaml.Node `yaml:"value"`
	Type        string    `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
	Public      bool      `yaml:"public,omitempty"`
}

// LoadTiers loads the bundle defaults, then overlays /etc, then
// /usr/local/etc, then ~/.<base>, each present file overriding keys
// from the previous, exactly the order spec.md §6.5 describes. base
// is the dotfile name under the user's home directory, e.g. "deckscan"
// for ~/.deckscan/config.yaml.
func (s *Store) LoadTiers(bundle map[string]Entry, base string) error {
	merged := make(map[string]Entry, len(bundle))
	for k, v := range bundle {
		merged[k] = v
	}

	for _, path := range tierPaths(base) {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("config: reading %s: %w", path, err)
		}
		tier, err := decodeFile(data)
		if err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
		for k, v := range tier {
			merged[k] = v
		}
	}

	s.replaceAll(merged)
	return nil
}

func tierPaths(base string) []string {
	paths := []string{
		filepath.Join("/etc", base, "config.yaml"),
		filepath.Join("/usr/local/etc", base, "config.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+base, "config.yaml"))
	}
	return paths
}

// Save writes the current entries to path as a temp file, then
// renames atomically over path (spec.md §6.5: ".bak temp file then
// atomic rename").
func (s *Store) Save(path string) error {
	snap := s.snapshot()
	out := make(map[string]fileEntry, len(snap))
	for k, e := range snap {
		fe, err := encodeEntry(e)
		if err != nil {
			return fmt.Errorf("config: encoding %q: %w", k, err)
		}
		out[k] = fe
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}

	tmp := path + ".bak"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("config: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

func decodeFile(data []byte) (map[string]Entry, error) {
	var raw map[string]fileEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]Entry, len(raw))
	for k, fe := range raw {
		e, err := decodeEntry(fe)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = e
	}
	return out, nil
}

func decodeEntry(fe fileEntry) (Entry, error) {
	v, err := decodeValue(fe.Type, fe.Value)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Value: v, Description: fe.Description, Public: fe.Public}, nil
}

func decodeValue(kind string, node yaml.Node) (Value, error) {
	switch kind {
	case "String":
		var s string
		if err := node.Decode(&s); err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case "StringMap":
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return Value{}, err
		}
		return StringMapValue(m), nil
	case "Path":
		var p string
		if err := node.Decode(&p); err != nil {
			return Value{}, err
		}
		return PathValue(p), nil
	case "PathArray":
		var p []string
		if err := node.Decode(&p); err != nil {
			return Value{}, err
		}
		return PathArrayValue(p), nil
	case "CodeDefinition":
		var name string
		if err := node.Decode(&name); err != nil {
			return Value{}, err
		}
		return CodeDefinitionValue(name), nil
	case "Bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case "Int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, err
		}
		return IntValue(i), nil
	case "Fixed":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return FixedValue(fixed.FromFloat(f)), nil
	case "Real":
		var r float64
		if err := node.Decode(&r); err != nil {
			return Value{}, err
		}
		return RealValue(r), nil
	case "Roll":
		var r int32
		if err := node.Decode(&r); err != nil {
			return Value{}, err
		}
		return RollValue(r), nil
	case "Time":
		var ms int64
		if err := node.Decode(&ms); err != nil {
			return Value{}, err
		}
		return TimeValue(time.Duration(ms) * time.Millisecond), nil
	default:
		return Value{}, fmt.Errorf("unknown value type %q", kind)
	}
}

func encodeEntry(e Entry) (fileEntry, error) {
	var node yaml.Node
	var err error
	switch e.Value.Kind() {
	case KindString:
		s, _ := e.Value.AsString()
		err = node.Encode(s)
	case KindStringMap:
		m, _ := e.Value.AsStringMap()
		err = node.Encode(m)
	case KindPath:
		p, _ := e.Value.AsPath()
		err = node.Encode(p)
	case KindPathArray:
		p, _ := e.Value.AsPathArray()
		err = node.Encode(p)
	case KindCodeDefinition:
		def, _ := e.Value.AsCodeDefinition()
		name := ""
		if def != nil {
			name = def.Format().Name
		}
		err = node.Encode(name)
	case KindBool:
		b, _ := e.Value.AsBool()
		err = node.Encode(b)
	case KindInt:
		i, _ := e.Value.AsInt()
		err = node.Encode(i)
	case KindFixed:
		f, _ := e.Value.AsFixed()
		err = node.Encode(f.Float())
	case KindReal:
		r, _ := e.Value.AsReal()
		err = node.Encode(r)
	case KindRoll:
		r, _ := e.Value.AsRoll()
		err = node.Encode(r)
	case KindTime:
		d, _ := e.Value.AsTime()
		err = node.Encode(d.Milliseconds())
	default:
		return fileEntry{}, fmt.Errorf("unknown value kind %v", e.Value.Kind())
	}
	if err != nil {
		return fileEntry{}, err
	}
	return fileEntry{
		Value:       node,
		Type:        e.Value.Kind().String(),
		Description: e.Description,
		Public:      e.Public,
	}, nil
}

