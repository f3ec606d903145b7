package taskfile

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/shlex"
	"github.com/ryanmoran/dockertask/internal"
	"github.com/ryanmoran/dockertask/internal/dispatch"
	"github.com/ryanmoran/dockertask/internal/format"
	"gopkg.in/yaml.v3"
)

// File is a parsed task file. Relative build contexts are resolved against
// Dir.
type File struct {
	Dir   string
	Tasks map[string]Task
	Names []string
}

// Task is one entry of the task file.
type Task struct {
	Command string           `yaml:"command"`
	Daemon  internal.Options `yaml:"daemon"`
	Opts    internal.Options `yaml:"opts"`

	Image  string           `yaml:"image"`
	Cmd    Args             `yaml:"cmd"`
	Stream *bool            `yaml:"stream"`
	ID     string           `yaml:"id"`
	Name   string           `yaml:"name"`
	Auth   internal.Options `yaml:"auth"`

	RepoTag string   `yaml:"repoTag"`
	Context string   `yaml:"context"`
	Src     []string `yaml:"src"`

	Cols    Columns       `yaml:"cols"`
	ColOpts ColumnOptions `yaml:"colOpts"`
}

// Args is a command line. A scalar is split into words the way a POSIX shell
// would, honouring quotes and escapes; a sequence is taken as is.
type Args []string

func (a *Args) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		args, err := shlex.Split(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: cannot split cmd %q: %w", node.Line, node.Value, err)
		}
		*a = args
		return nil
	case yaml.SequenceNode:
		var args []string
		if err := node.Decode(&args); err != nil {
			return err
		}
		*a = args
		return nil
	default:
		return fmt.Errorf("line %d: cmd must be a string or a list of strings", node.Line)
	}
}

// ColumnSpec names a ps column and the transform applied to it.
type ColumnSpec struct {
	Name      string
	Transform string
}

// Columns is an ordered column mapping.
type Columns []ColumnSpec

func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: cols must map column names to transforms", node.Line)
	}

	columns := make(Columns, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: transform for column %q must be a name", value.Line, key.Value)
		}

		transform := value.Value
		if value.ShortTag() == "!!null" {
			transform = ""
		}
		columns = append(columns, ColumnSpec{Name: key.Value, Transform: transform})
	}

	*c = columns
	return nil
}

// ColumnOptions controls how ps draws its table.
type ColumnOptions struct {
	Style    string         `yaml:"style"`
	MaxWidth map[string]int `yaml:"maxWidth"`
	Headers  *bool          `yaml:"headers"`
}

// Load reads and parses the task file at path.
func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %q: %w\nCreate the file or point --file at an existing one", path, err)
	}

	file, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task file %q: %w", path, err)
	}
	file.Dir = filepath.Dir(path)

	return file, nil
}

// Parse parses task file content. Relative paths resolve against the
// working directory until Dir is set.
func Parse(content []byte) (*File, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, err
	}

	file := &File{Dir: ".", Tasks: map[string]Task{}}
	if len(document.Content) == 0 {
		return file, nil
	}

	root := document.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: task file must map task names to tasks", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		if _, exists := file.Tasks[key.Value]; exists {
			return nil, fmt.Errorf("line %d: task %q is declared twice", key.Line, key.Value)
		}

		var task Task
		if err := value.Decode(&task); err != nil {
			return nil, fmt.Errorf("task %q: %w", key.Value, err)
		}

		file.Tasks[key.Value] = task
		file.Names = append(file.Names, key.Value)
	}

	return file, nil
}

// Invocation resolves the named task into the command to dispatch and its
// invocation. containerName names containers the task creates without an
// explicit name.
func (f *File) Invocation(name, containerName string) (string, dispatch.Invocation, error) {
	task, ok := f.Tasks[name]
	if !ok {
		return "", dispatch.Invocation{}, fmt.Errorf("%w: no task named %q in the task file", dispatch.ErrInvalidInvocation, name)
	}

	inv := dispatch.Invocation{
		ID:            task.ID,
		Image:         task.Image,
		Cmd:           task.Cmd,
		RepoTag:       task.RepoTag,
		Name:          task.Name,
		Options:       task.Opts,
		Auth:          task.Auth,
		Daemon:        task.Daemon,
		ContainerName: containerName,
		ColumnOptions: format.TableOptions{
			Style:    task.ColOpts.Style,
			MaxWidth: task.ColOpts.MaxWidth,
		},
	}
	if task.ColOpts.Headers != nil {
		inv.ColumnOptions.HideHeaders = !*task.ColOpts.Headers
	}
	if task.Stream != nil && !*task.Stream {
		inv.Output = io.Discard
	}

	if task.Context != "" {
		inv.Context = task.Context
		if !filepath.IsAbs(inv.Context) {
			inv.Context = filepath.Join(f.Dir, inv.Context)
		}

		files, err := ResolveSources(inv.Context, task.Src)
		if err != nil {
			return "", dispatch.Invocation{}, fmt.Errorf("task %q: %w", name, err)
		}
		inv.Files = files
	}

	for _, spec := range task.Cols {
		transform, err := dispatch.NamedTransform(spec.Transform)
		if err != nil {
			return "", dispatch.Invocation{}, fmt.Errorf("%w: task %q column %q: %v", dispatch.ErrInvalidInvocation, name, spec.Name, err)
		}
		inv.Columns = append(inv.Columns, dispatch.Column{Name: spec.Name, Transform: transform})
	}

	return task.Command, inv, nil
}

// ResolveSources expands the glob patterns in src relative to contextDir and
// returns the matching regular files, relative to contextDir, in pattern
// order without duplicates. Patterns may use ** to match any number of
// directories. Directories are left out.
func ResolveSources(contextDir string, src []string) ([]string, error) {
	fsys := os.DirFS(contextDir)

	var files []string
	seen := map[string]bool{}

	for _, pattern := range src {
		slashed := strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		if path.IsAbs(slashed) {
			return nil, fmt.Errorf("src pattern %q must be relative to the build context", pattern)
		}

		matches, err := doublestar.Glob(fsys, slashed)
		if err != nil {
			return nil, fmt.Errorf("invalid src pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			info, err := fs.Stat(fsys, match)
			if err != nil {
				return nil, fmt.Errorf("failed to read build source %q: %w", match, err)
			}
			if info.IsDir() {
				continue
			}

			rel := filepath.FromSlash(match)
			if !seen[rel] {
				seen[rel] = true
				files = append(files, rel)
			}
		}
	}

	return files, nil
}
