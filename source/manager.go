// Package source tracks the text of every file and macro expansion a
// compilation touches, and maps opaque Locations back to file names, lines,
// and columns. It mirrors the original SourceManager's split between real
// file buffers and expansion buffers: an expansion's tokens get their own
// BufferID but carry the location of the invocation that produced them, so
// diagnostics can be attributed to either the expansion text or the macro
// call site.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileInfo backs a real, on-disk (or directly assigned) source file.
type fileInfo struct {
	name      string
	directory string
	buffer    []byte

	once       sync.Once
	lineStarts []int
	prevLine   int
	mu         sync.Mutex
}

// expansionInfo backs a macro-expansion buffer: synthetic text produced by
// the preprocessor, plus the range in the invoking buffer that it expanded
// from.
type expansionInfo struct {
	name             string
	buffer           []byte
	originalLocation Location
	expansionStart   Location
	expansionEnd     Location
}

// bufferEntry is the tagged union of fileInfo/expansionInfo the original
// SourceManager keeps per BufferID.
type bufferEntry struct {
	isFile bool
	file   *fileInfo
	exp    *expansionInfo
}

// Manager owns every buffer registered during a compilation and is the only
// way to convert a Location into human-readable file/line/column
// information. It is not safe for concurrent registration from multiple
// goroutines beyond the internal per-file line-index cache, matching the
// synchronous, single-threaded front end described by the rest of this
// module.
type Manager struct {
	mu      sync.Mutex
	buffers []bufferEntry // index 0 unused, so BufferID doubles as a slice index
	byPath  map[string]BufferID

	userDirs    []string
	systemDirs  []string
	libraryDirs []string
}

// NewManager creates an empty Manager with no registered buffers.
func NewManager() *Manager {
	return &Manager{
		buffers: make([]bufferEntry, 1), // reserve index 0 for NoBuffer
		byPath:  make(map[string]BufferID),
	}
}

// AddUserDirectory registers a directory searched for `include "..."` before
// AddSystemDirectory's directories.
func (m *Manager) AddUserDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userDirs = append(m.userDirs, dir)
}

// AddSystemDirectory registers a directory searched for `` `include <...> ``.
func (m *Manager) AddSystemDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systemDirs = append(m.systemDirs, dir)
}

// AddLibraryDirectory registers a `-y`-style library directory, searched by
// ResolveLibraryModule. Nothing else in this module calls ResolveLibraryModule.
func (m *Manager) AddLibraryDirectory(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.libraryDirs = append(m.libraryDirs, dir)
}

// ResolveLibraryModule searches the registered library directories for a
// file named name+".sv", the convention library directories use to map a
// module name to its defining source file, and registers it as a buffer if
// found.
func (m *Manager) ResolveLibraryModule(name string) (BufferID, error) {
	m.mu.Lock()
	dirs := append([]string(nil), m.libraryDirs...)
	m.mu.Unlock()

	for _, d := range dirs {
		if id, err := m.ReadSource(filepath.Join(d, name+".sv")); err == nil {
			return id, nil
		}
	}
	return NoBuffer, fmt.Errorf("source: module %q not found in any library directory", name)
}

// DuplicatePathError reports that AssignText or AssignBuffer was asked to
// register a path that already resolves to a loaded buffer. Existing names
// the BufferID already registered under that path.
type DuplicatePathError struct {
	Path     string
	Existing BufferID
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("source: duplicate path: %s", e.Path)
}

// AssignText registers in-memory text as a new buffer under a synthetic
// name, without touching the filesystem. Useful for tests and for tools
// that already have source text in hand. Fails with a *DuplicatePathError
// if name already resolves to a loaded buffer.
func (m *Manager) AssignText(name string, text []byte) (BufferID, error) {
	return m.assignNamed(name, "", name, text)
}

// AssignBuffer registers in-memory text as a new buffer associated with a
// real directory (used for include-relative resolution of files that were
// read outside the Manager). Fails with a *DuplicatePathError if path
// already resolves to a loaded buffer.
func (m *Manager) AssignBuffer(path string, text []byte) (BufferID, error) {
	dir, name := filepath.Split(path)
	return m.assignNamed(name, dir, path, text)
}

// assignNamed is shared by AssignText/AssignBuffer: it checks path's
// canonical form against every buffer already registered by ReadSource,
// AssignText, or AssignBuffer, failing with DuplicatePath rather than
// silently registering a second buffer for the same path — unlike
// ReadSource, which treats a repeat read as a cache hit rather than an
// error, since ReadSource's caller never claims ownership of a fresh
// buffer the way AssignText/AssignBuffer's callers do.
func (m *Manager) assignNamed(name, dir, path string, text []byte) (BufferID, error) {
	canon, canonErr := canonicalize(path)
	if canonErr == nil {
		m.mu.Lock()
		if existing, ok := m.byPath[canon]; ok {
			m.mu.Unlock()
			return NoBuffer, &DuplicatePathError{Path: path, Existing: existing}
		}
		m.mu.Unlock()
	}

	id := m.assignBuffer(name, dir, text)

	if canonErr == nil {
		m.mu.Lock()
		m.byPath[canon] = id
		m.mu.Unlock()
	}
	return id, nil
}

func (m *Manager) assignBuffer(name, dir string, text []byte) BufferID {
	m.mu.Lock()
	defer m.mu.Unlock()
	fi := &fileInfo{name: name, directory: dir, buffer: text}
	m.buffers = append(m.buffers, bufferEntry{isFile: true, file: fi})
	return BufferID(len(m.buffers) - 1)
}

// ReadSource reads path from disk and registers it as a new buffer. The
// canonical form of path is cached so repeated ReadSource calls for the
// same file (via different relative spellings) return the same BufferID
// rather than failing — only the direct AssignText/AssignBuffer entry
// points fail on a duplicate path.
func (m *Manager) ReadSource(path string) (BufferID, error) {
	canon, err := canonicalize(path)
	if err != nil {
		return NoBuffer, err
	}

	m.mu.Lock()
	if id, ok := m.byPath[canon]; ok {
		m.mu.Unlock()
		return id, nil
	}
	m.mu.Unlock()

	text, err := os.ReadFile(path)
	if err != nil {
		return NoBuffer, err
	}

	dir, name := filepath.Split(path)
	id := m.assignBuffer(name, dir, text)

	m.mu.Lock()
	m.byPath[canon] = id
	m.mu.Unlock()
	return id, nil
}

// ReadHeader resolves path as an `include target, relative first to
// includedFrom's directory (unless isSystemPath), then to the registered
// user directories, then (only when isSystemPath) the system directories —
// mirroring SourceManager::readHeader's search order.
func (m *Manager) ReadHeader(path string, includedFrom BufferID, isSystemPath bool) (BufferID, error) {
	var candidates []string

	if !isSystemPath {
		if dir := m.directoryOf(includedFrom); dir != "" {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}
	candidates = append(candidates, m.userDirs...)

	if isSystemPath {
		candidates = append(candidates, m.systemDirs...)
	}

	if len(candidates) == 0 {
		return m.ReadSource(path)
	}

	for _, c := range candidates {
		full := c
		if fi, statErr := os.Stat(c); statErr == nil && fi.IsDir() {
			full = filepath.Join(c, path)
		}
		if id, err := m.ReadSource(full); err == nil {
			return id, nil
		}
	}
	return NoBuffer, fmt.Errorf("source: header not found: %s", path)
}

func (m *Manager) directoryOf(id BufferID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(id) <= 0 || int(id) >= len(m.buffers) {
		return ""
	}
	e := m.buffers[id]
	if e.isFile {
		return e.file.directory
	}
	return ""
}

// AssignExpansion registers an expansion buffer produced by macro
// substitution. original is the location of the invocation in the parent
// buffer; expansionRange spans the synthesized tokens within the new
// buffer.
func (m *Manager) AssignExpansion(name string, text []byte, original Location, expansionRange Range) BufferID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ei := &expansionInfo{
		name:             name,
		buffer:           text,
		originalLocation: original,
		expansionStart:   expansionRange.Start,
		expansionEnd:     expansionRange.End,
	}
	m.buffers = append(m.buffers, bufferEntry{isFile: false, exp: ei})
	return BufferID(len(m.buffers) - 1)
}

// IsExpansion reports whether id refers to a macro expansion buffer rather
// than a file.
func (m *Manager) IsExpansion(id BufferID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(id) <= 0 || int(id) >= len(m.buffers) {
		return false
	}
	return !m.buffers[id].isFile
}

// OriginalLocation returns the invocation-site Location that produced
// expansion buffer id. It panics if id is not an expansion buffer.
func (m *Manager) OriginalLocation(id BufferID) Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.buffers[id]
	if e.isFile {
		panic("source: OriginalLocation on a file buffer")
	}
	return e.exp.originalLocation
}

// GetBuffer returns the raw text of buffer id.
func (m *Manager) GetBuffer(id BufferID) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(id) <= 0 || int(id) >= len(m.buffers) {
		return nil
	}
	e := m.buffers[id]
	if e.isFile {
		return e.file.buffer
	}
	return e.exp.buffer
}

// GetFileName returns the display name of buffer id (a path for files, a
// synthetic name like "<expansion of FOO>" for expansions).
func (m *Manager) GetFileName(id BufferID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(id) <= 0 || int(id) >= len(m.buffers) {
		return "<unknown>"
	}
	e := m.buffers[id]
	if e.isFile {
		return filepath.Join(e.file.directory, e.file.name)
	}
	return e.exp.name
}

// GetLineNumber returns the 1-based line number of loc.
func (m *Manager) GetLineNumber(loc Location) int {
	line, _ := m.lineCol(loc)
	return line
}

// GetColumnNumber returns the 1-based column number of loc.
func (m *Manager) GetColumnNumber(loc Location) int {
	_, col := m.lineCol(loc)
	return col
}

func (m *Manager) lineCol(loc Location) (line, col int) {
	m.mu.Lock()
	if int(loc.Buffer) <= 0 || int(loc.Buffer) >= len(m.buffers) {
		m.mu.Unlock()
		return 0, 0
	}
	e := m.buffers[loc.Buffer]
	m.mu.Unlock()

	var fi *fileInfo
	var buf []byte
	if e.isFile {
		fi = e.file
		buf = e.file.buffer
	} else {
		buf = e.exp.buffer
	}

	if fi == nil {
		// Expansions are usually short; just scan directly rather than
		// maintaining a cache that will rarely be reused.
		return scanLineCol(buf, loc.Offset)
	}

	fi.once.Do(func() { fi.lineStarts = computeLineStarts(buf) })

	fi.mu.Lock()
	idx := findLineIndex(fi.lineStarts, loc.Offset, fi.prevLine)
	fi.prevLine = idx
	fi.mu.Unlock()

	lineStart := fi.lineStarts[idx]
	return idx + 1, loc.Offset - lineStart + 1
}

func computeLineStarts(buf []byte) []int {
	starts := []int{0}
	for i, b := range buf {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// findLineIndex binary-searches lineStarts for the line containing pos,
// trying a short forward scan from prevHint first since callers tend to
// query locations in increasing order.
func findLineIndex(lineStarts []int, pos, prevHint int) int {
	if prevHint >= 0 && prevHint < len(lineStarts) && lineStarts[prevHint] <= pos {
		end := prevHint + 8
		if end > len(lineStarts) {
			end = len(lineStarts)
		}
		for i := prevHint + 1; i < end; i++ {
			if lineStarts[i] > pos {
				return i - 1
			}
		}
		if end == len(lineStarts) {
			return end - 1
		}
	}

	lo, hi := 0, len(lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineStarts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func scanLineCol(buf []byte, pos int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < pos && i < len(buf); i++ {
		if buf[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// canonicalize fixes the open question of path comparison policy: clean and
// resolve symlinks when the file exists, otherwise clean and make absolute.
// Comparison is always case-sensitive, independent of the host OS.
func canonicalize(path string) (string, error) {
	clean := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(clean); err == nil {
		return resolved, nil
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return "", err
	}
	return abs, nil
}
