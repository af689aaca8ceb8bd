package service

import (
	"path/filepath"
	"strings"

	"kbqa/internal/domain"
)

// FileTypeCount is the number of documents sharing an extension.
type FileTypeCount struct {
	Ext   string
	Count int
}

type Stats struct {
	TotalDocuments int
	TotalWords     int
	AverageWords   int
	// FileTypes is ordered by first appearance.
	FileTypes []FileTypeCount
}

// WordCount counts whitespace-separated words.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// Extension is the lowercased suffix of name, empty for dotfiles and names
// without one.
func Extension(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == base || ext == "." {
		return ""
	}
	return strings.ToLower(ext)
}

func ComputeStats(docs []domain.Document) Stats {
	s := Stats{TotalDocuments: len(docs)}
	index := map[string]int{}
	for _, d := range docs {
		s.TotalWords += WordCount(d.Content)
		ext := Extension(d.Filename)
		if i, ok := index[ext]; ok {
			s.FileTypes[i].Count++
			continue
		}
		index[ext] = len(s.FileTypes)
		s.FileTypes = append(s.FileTypes, FileTypeCount{Ext: ext, Count: 1})
	}
	if s.TotalDocuments > 0 {
		s.AverageWords = s.TotalWords / s.TotalDocuments
	}
	return s
}
