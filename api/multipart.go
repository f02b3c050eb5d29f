package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// File is one file part of a multipart body.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Multipart is a form body with plain fields and file parts. It is read once
// and buffered, so a refreshed request replays the same bytes.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

func (m *Multipart) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.WriteField(name, m.Fields[name]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		if f.Field == "" || f.Content == nil {
			return nil, "", fmt.Errorf("file part requires a field name and content")
		}
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
