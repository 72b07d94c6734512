package entity

import (
	"fmt"
	"strings"
	"time"
)

type Site struct {
	ID           uint64
	Domain       string
	Path         string
	Name         string
	Archived     bool
	Spam         bool
	Mature       bool
	Deleted      bool
	RegisteredAt time.Time
}

// HomeURL is the public address of the site, always ending with a slash.
func (s Site) HomeURL(scheme string) string {
	path := s.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return fmt.Sprintf("%s://%s%s", scheme, s.Domain, path)
}

func (s Site) AdminURL(scheme string) string {
	return s.HomeURL(scheme) + "admin/"
}
