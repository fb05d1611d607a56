package imagesource

import "fmt"

// DecodeKind classifies why an image could not be decoded.
type DecodeKind int

const (
	// Signature means the leading bytes match no supported format.
	Signature DecodeKind = iota
	// ColorModel means the image is not 8-bit RGB or RGBA.
	ColorModel
	// Corrupt means the stream is truncated or malformed.
	Corrupt
)

func (k DecodeKind) String() string {
	switch k {
	case Signature:
		return "unrecognised signature"
	case ColorModel:
		return "unsupported color model"
	case Corrupt:
		return "corrupt image data"
	default:
		return fmt.Sprintf("DecodeKind(%d)", int(k))
	}
}

// DecodeError is returned when the input bytes cannot be turned into a
// PixelGrid. No partial grid accompanies it.
type DecodeError struct {
	Kind   DecodeKind
	Format string
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.String()
	if e.Format != "" {
		msg = e.Format + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FileOpenError is returned when the input path cannot be read.
type FileOpenError struct {
	Path string
	Err  error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("opening %s: %v", e.Path, e.Err)
}

func (e *FileOpenError) Unwrap() error { return e.Err }
