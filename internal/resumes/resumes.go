// Package resumes reads plain-text resume documents from a directory. The
// filename sans extension is the resume id (candidate name). Nothing here is
// persisted; callers read the directory fresh on each use.
package resumes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

type Resume struct {
	ID   string
	Text string
}

// LoadDir reads every .txt file under dir, sorted by resume id. A missing
// directory yields an empty slice. An unreadable file is skipped rather than
// failing the whole set.
func LoadDir(dir string) ([]Resume, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Resume{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read resume dir %s: %w", dir, err)
	}
	out := []Resume{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			out = append(out, Resume{ID: id})
			continue
		}
		out = append(out, Resume{ID: id, Text: string(b)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DirSource re-reads a resume directory on every Load call.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource { return &DirSource{dir: dir} }

func (s *DirSource) Load() ([]Resume, error) { return LoadDir(s.dir) }

// ExtractSkills pulls a skill list out of resume text. It prefers an
// explicit "Skills:" line (comma separated); otherwise it falls back to a
// naive heuristic collecting up to eight title-cased tokens.
func ExtractSkills(text string) []string {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		i := strings.Index(lower, "skills:")
		if i < 0 {
			continue
		}
		rest := line[i+len("skills:"):]
		skills := []string{}
		for _, part := range strings.Split(rest, ",") {
			if p := strings.TrimSpace(part); p != "" {
				skills = append(skills, p)
			}
		}
		if len(skills) > 0 {
			return skills
		}
	}
	return titleCaseTokens(text, 8)
}

func titleCaseTokens(text string, max int) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ",.()")
		if len(w) <= 2 || len(w) >= 20 || !isTitleCase(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func isTitleCase(w string) bool {
	runes := []rune(w)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
