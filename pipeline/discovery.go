package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/mod/modfile"

	"github.com/emilholmegaard/doc-architect/ast"
)

// ignoredDirs are pruned during discovery regardless of configuration.
var ignoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".venv":        true,
	"__pycache__":  true,
	"bin":          true,
	"obj":          true,
}

var extensionLanguages = map[string]ast.LanguageTag{
	".java": ast.Java,
	".kt":   ast.Kotlin,
	".kts":  ast.Kotlin,
	".py":   ast.Python,
	".cs":   ast.CSharp,
	".go":   ast.Go,
	".rb":   ast.Ruby,
	".js":   ast.JavaScript,
	".jsx":  ast.JavaScript,
	".mjs":  ast.JavaScript,
	".ts":   ast.TypeScript,
	".tsx":  ast.TypeScript,
}

// DetectLanguage derives the language tag from a file path.
func DetectLanguage(path string) ast.LanguageTag {
	if tag, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return tag
	}
	return ast.Other
}

// discoveredFile is one candidate produced by discovery, ordered by relative
// path.
type discoveredFile struct {
	relPath  string
	absPath  string
	language ast.LanguageTag
}

// discover walks the root and returns the ordered candidate files, pruning
// ignored directories and configured exclude globs.
func discover(root string, excludes []string) ([]discoveredFile, error) {
	if _, err := os.ReadDir(root); err != nil {
		return nil, &FatalIOError{Path: root, Err: err}
	}
	var files []discoveredFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path != root && (ignoredDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		for _, pattern := range excludes {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return nil
			}
		}
		files = append(files, discoveredFile{
			relPath:  rel,
			absPath:  path,
			language: DetectLanguage(rel),
		})
		return nil
	})
	if err != nil {
		return nil, &FatalIOError{Path: root, Err: err}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].relPath < files[j].relPath })
	return files, nil
}

// Project is a detected project root inside the scanned tree.
type Project struct {
	Name string
	Type string
	Path string
}

// markerTypes maps project marker files to project types, the way the
// repository detector classifies roots.
var markerTypes = map[string]string{
	"go.mod":           "go",
	"pom.xml":          "java",
	"build.gradle":     "java",
	"package.json":     "javascript",
	"Gemfile":          "ruby",
	"pyproject.toml":   "python",
	"requirements.txt": "python",
}

var (
	jsPackageName  = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	mavenArtifact  = regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`)
	pyProjectTitle = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)
)

// detectProjects classifies marker files among the discovered set into named
// projects. Secondary markers never override an already-typed directory.
func detectProjects(files []discoveredFile) []Project {
	byDir := map[string]Project{}
	for _, f := range files {
		base := filepath.Base(f.relPath)
		projectType, ok := markerTypes[base]
		if !ok {
			if strings.HasSuffix(base, ".csproj") {
				projectType = "dotnet"
			} else {
				continue
			}
		}
		dir := filepath.ToSlash(filepath.Dir(f.relPath))
		if existing, seen := byDir[dir]; seen && existing.Name != "" {
			continue
		}
		byDir[dir] = Project{
			Name: projectName(f, base),
			Type: projectType,
			Path: dir,
		}
	}
	projects := make([]Project, 0, len(byDir))
	for _, p := range byDir {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Path < projects[j].Path })
	return projects
}

// projectName extracts the declared project name from a marker file, falling
// back to the directory name.
func projectName(f discoveredFile, base string) string {
	fallback := filepath.Base(filepath.Dir(f.absPath))
	data, err := os.ReadFile(f.absPath)
	if err != nil {
		return fallback
	}
	switch {
	case base == "go.mod":
		if mod, _ := modfile.Parse(f.absPath, data, nil); mod != nil && mod.Module != nil {
			return mod.Module.Mod.Path
		}
	case base == "package.json":
		if m := jsPackageName.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	case base == "pom.xml":
		if m := mavenArtifact.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	case base == "pyproject.toml":
		if m := pyProjectTitle.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	case strings.HasSuffix(base, ".csproj"):
		return strings.TrimSuffix(base, ".csproj")
	}
	return fallback
}
