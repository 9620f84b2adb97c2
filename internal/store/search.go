package store

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/yiyuanh/snip/pkg/model"
)

// Search returns snippets whose task or any tag contains keyword, ignoring case.
// It returns ErrNoSnippets when the store file does not exist yet.
func (s *Store) Search(keyword string) ([]model.Snippet, error) {
	snippets, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Snippet{}, ErrNoSnippets
	}
	if err != nil {
		return nil, err
	}
	return Filter(snippets, keyword), nil
}

// Filter returns the snippets matching keyword, in their original order.
func Filter(snippets []model.Snippet, keyword string) []model.Snippet {
	keyword = strings.ToLower(keyword)
	matches := []model.Snippet{}
	for _, sn := range snippets {
		if matchesKeyword(sn, keyword) {
			matches = append(matches, sn)
		}
	}
	return matches
}

// matchesKeyword expects keyword to be lower-cased already.
func matchesKeyword(sn model.Snippet, keyword string) bool {
	if strings.Contains(strings.ToLower(sn.Task), keyword) {
		return true
	}
	for _, tag := range sn.Tags {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	return false
}
