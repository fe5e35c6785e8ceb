package storage

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"bloglist/local-app/src/pkg/model"
)

// blogExport is the XML document root for an exported list.
type blogExport struct {
	XMLName xml.Name      `xml:"blogs"`
	Blogs   []*model.Blog `xml:"blog"`
}

// FileExport exports a blog list to a file in the specified format (JSON or XML).
func FileExport(blogs []*model.Blog, filename string, format string) error {
	if blogs == nil {
		blogs = []*model.Blog{}
	}

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(blogs, "", "  ")
	case "xml":
		data, err = xml.MarshalIndent(blogExport{Blogs: blogs}, "", "  ")
		if err == nil {
			data = append([]byte(xml.Header), data...)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal blogs: %w", err)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
