package util

import "io"

func WriteBytesAtomic(path string, content []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
}
