// Package classpath locates class file bytes in directories, jars and jmods
// and decodes them through a shared cache.
package classpath

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrClassNotFound is returned by a Source that does not hold the class.
var ErrClassNotFound = errors.New("classpath: class not found")

// jmodMagic prefixes the zip data of a JDK .jmod file.
var jmodMagic = []byte{'J', 'M', 0x01, 0x00}

// Source supplies raw class file bytes by internal class name, e.g.
// "java/lang/Object".
type Source interface {
	ReadClass(name string) ([]byte, error)
}

// DirSource reads classes from a directory tree laid out by package.
type DirSource struct {
	Root string
}

func (d DirSource) ReadClass(name string) ([]byte, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(name)+".class")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s in %s: %w", name, d.Root, ErrClassNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("dir: reading %s: %w", path, err)
	}
	return data, nil
}

func (d DirSource) String() string { return d.Root }

// ZipSource reads classes from a jar or jmod archive held in memory.
type ZipSource struct {
	name    string
	prefix  string
	entries map[string]*zip.File
}

// OpenZip loads the archive at path. Files starting with the jmod header
// are treated as jmods, whose classes live under "classes/".
func OpenZip(path string) (*ZipSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("zip: reading %s: %w", path, err)
	}
	return NewZipSource(path, data)
}

// NewZipSource indexes an in-memory jar or jmod. name is used in errors and logs.
func NewZipSource(name string, data []byte) (*ZipSource, error) {
	prefix := ""
	if bytes.HasPrefix(data, jmodMagic) {
		data = data[len(jmodMagic):]
		prefix = "classes/"
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: opening %s: %w", name, err)
	}

	z := &ZipSource{name: name, prefix: prefix, entries: make(map[string]*zip.File)}
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, prefix) || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		cls := strings.TrimSuffix(strings.TrimPrefix(f.Name, prefix), ".class")
		if _, dup := z.entries[cls]; !dup {
			z.entries[cls] = f
		}
	}
	return z, nil
}

func (z *ZipSource) ReadClass(name string) ([]byte, error) {
	f, ok := z.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", name, z.name, ErrClassNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("zip: opening %s in %s: %w", f.Name, z.name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("zip: reading %s in %s: %w", f.Name, z.name, err)
	}
	return data, nil
}

// Classes returns the names of all classes in the archive.
func (z *ZipSource) Classes() []string {
	names := make([]string, 0, len(z.entries))
	for n := range z.entries {
		names = append(names, n)
	}
	return names
}

func (z *ZipSource) String() string { return z.name }

// Parse splits a classpath string on the OS list separator. Entries ending
// in .jar, .zip or .jmod are opened as archives; anything else is a directory.
func Parse(classpath string) ([]Source, error) {
	var sources []Source
	for _, entry := range filepath.SplitList(classpath) {
		if entry == "" {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry)) {
		case ".jar", ".zip", ".jmod":
			z, err := OpenZip(entry)
			if err != nil {
				return nil, err
			}
			sources = append(sources, z)
		default:
			sources = append(sources, DirSource{Root: entry})
		}
	}
	return sources, nil
}
