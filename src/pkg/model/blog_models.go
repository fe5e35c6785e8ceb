package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Blog is a single entry of the blog list.
type Blog struct {
	ID     string       `json:"id" xml:"id,attr"`
	Title  string       `json:"title" xml:"title"`
	Author string       `json:"author" xml:"author"`
	URL    string       `json:"url" xml:"url"`
	Likes  int          `json:"likes" xml:"likes"`
	User   *BlogCreator `json:"user,omitempty" xml:"user,omitempty"`
}

// BlogCreator references the user who added a blog. The backend sends it
// populated on list reads and as a bare id after updates.
type BlogCreator struct {
	ID       string `json:"id" xml:"id,attr"`
	Username string `json:"username,omitempty" xml:"username,attr,omitempty"`
	Name     string `json:"name,omitempty" xml:"name,attr,omitempty"`
}

// UnmarshalJSON accepts either a creator object or a plain id string.
func (c *BlogCreator) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("failed to decode creator id: %w", err)
		}
		*c = BlogCreator{ID: id}
		return nil
	}

	type plain BlogCreator
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode creator: %w", err)
	}
	*c = BlogCreator(p)
	return nil
}

// Populated reports whether the creator carries more than an id.
func (c *BlogCreator) Populated() bool {
	return c != nil && (c.Username != "" || c.Name != "")
}

// Clone returns a deep copy of the blog.
func (b *Blog) Clone() *Blog {
	if b == nil {
		return nil
	}
	c := *b
	if b.User != nil {
		u := *b.User
		c.User = &u
	}
	return &c
}

// BlogInfo contains the fields of a blog submitted for creation.
type BlogInfo struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// BlogPatch carries the fields of an update. Nil fields are not sent.
type BlogPatch struct {
	Title  *string `json:"title,omitempty"`
	Author *string `json:"author,omitempty"`
	URL    *string `json:"url,omitempty"`
	Likes  *int    `json:"likes,omitempty"`
	User   string  `json:"user,omitempty"`
}
