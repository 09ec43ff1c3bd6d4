package classfile

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Magic is the first four bytes of every class file.
const Magic = 0xCAFEBABE

// ParseFile reads and decodes a .class file from the given path.
func ParseFile(path string) (*Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Parse reads r to the end and decodes the result.
func Parse(r io.Reader) (*Class, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading class file: %w", err)
	}
	return Decode(data)
}

// Decode decodes a complete class file image in a single forward pass.
// The first error encountered ends decoding; no partially built Class is
// ever returned. Errors are *DecodeError values wrapping one of the package
// sentinels. The returned Class does not alias data.
func Decode(data []byte) (*Class, error) {
	d := &decoder{r: newReader(data)}
	cf, err := d.decode()
	if err != nil {
		Logger().Debug("class decode failed", zap.Int("size", len(data)), zap.Error(err))
		return nil, err
	}
	if ce := Logger().Check(zap.DebugLevel, "class decoded"); ce != nil {
		name, _ := cf.ClassName()
		ce.Write(
			zap.String("class", name),
			zap.Uint16("major", cf.MajorVersion),
			zap.Uint16("minor", cf.MinorVersion),
			zap.Int("constants", cf.ConstantPool.Len()),
			zap.Int("fields", len(cf.Fields)),
			zap.Int("methods", len(cf.Methods)),
		)
	}
	return cf, nil
}

type decoder struct {
	r *reader
}

// section runs fn and wraps its error with the section name and the offset
// at which the section began.
func (d *decoder) section(name string, fn func() error) error {
	start := d.r.Position()
	if err := fn(); err != nil {
		return &DecodeError{Section: name, Offset: start, Err: err}
	}
	return nil
}

func (d *decoder) decode() (*Class, error) {
	cf := &Class{}
	r := d.r

	if err := d.section("header", func() error {
		var err error
		if cf.Magic, err = r.U4(); err != nil {
			return fmt.Errorf("reading magic number: %w", err)
		}
		if cf.Magic != Magic {
			return fmt.Errorf("got 0x%X (expected 0xCAFEBABE): %w", cf.Magic, ErrInvalidMagic)
		}
		if cf.MinorVersion, err = r.U2(); err != nil {
			return fmt.Errorf("reading minor version: %w", err)
		}
		if cf.MajorVersion, err = r.U2(); err != nil {
			return fmt.Errorf("reading major version: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.section("constant pool", func() error {
		var err error
		cf.ConstantPool, err = parseConstantPool(r)
		return err
	}); err != nil {
		return nil, err
	}
	pool := cf.ConstantPool

	if err := d.section("class info", func() error {
		flags, err := r.U2()
		if err != nil {
			return fmt.Errorf("reading access flags: %w", err)
		}
		cf.AccessFlags = AccessFlags(flags)
		if cf.ThisClass, err = r.U2(); err != nil {
			return fmt.Errorf("reading this_class: %w", err)
		}
		if cf.SuperClass, err = r.U2(); err != nil {
			return fmt.Errorf("reading super_class: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := d.section("interfaces", func() error {
		var err error
		cf.Interfaces, err = parseInterfaces(r)
		return err
	}); err != nil {
		return nil, err
	}

	if err := d.section("fields", func() error {
		var err error
		cf.Fields, err = parseFields(r, pool)
		return err
	}); err != nil {
		return nil, err
	}

	if err := d.section("methods", func() error {
		var err error
		cf.Methods, err = parseMethods(r, pool)
		return err
	}); err != nil {
		return nil, err
	}

	if err := d.section("class attributes", func() error {
		var err error
		cf.Attributes, err = parseAttributes(r, pool)
		return err
	}); err != nil {
		return nil, err
	}

	if n := r.Remaining(); n != 0 {
		return nil, &DecodeError{Section: "trailer", Offset: r.Position(), Err: fmt.Errorf("%d bytes after class attributes: %w", n, ErrTrailingData)}
	}
	return cf, nil
}
