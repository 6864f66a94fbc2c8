package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/weft/internal/dto"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parse compiles a YAML program document into a validated program.
func Parse(data []byte) (*domain.Program, error) {
	return parse("", data)
}

// ParseFile compiles a program file. A document without a name takes the
// file's base name.
func ParseFile(path string) (*domain.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	return parse(path, data)
}

// IsProgramFile reports whether name has a program file extension.
func IsProgramFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDir compiles every .yaml/.yml file in dir, sorted by file name.
// Two files declaring the same program name are an error.
func LoadDir(dir string) ([]*domain.Program, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read programs dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsProgramFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	seen := make(map[string]string, len(files))
	programs := make([]*domain.Program, 0, len(files))
	for _, f := range files {
		prog, err := ParseFile(f)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[prog.Name]; dup {
			return nil, &ParseError{File: f, Index: -1, Err: fmt.Errorf("program %q already defined in %s", prog.Name, prev)}
		}
		seen[prog.Name] = f
		programs = append(programs, prog)
	}
	return programs, nil
}

func parse(file string, data []byte) (*domain.Program, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{File: file, Index: -1, Err: fmt.Errorf("invalid yaml: %w", err)}
	}
	if raw == nil {
		return nil, &ParseError{File: file, Index: -1, Err: errors.New("empty document")}
	}

	var doc dto.ProgramDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &ParseError{File: file, Index: -1, Err: fmt.Errorf("failed to decode program: %w", err)}
	}

	if doc.Name == "" && file != "" {
		doc.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	if doc.Name == "" {
		return nil, &ParseError{File: file, Index: -1, Err: errors.New("program name is required")}
	}

	input, err := schema.ParseTypeMap(doc.Input)
	if err != nil {
		return nil, &ParseError{File: file, Index: -1, Err: fmt.Errorf("input: %w", err)}
	}

	b := dsl.New(doc.Name).Version(doc.Version).Source(file).Input(input)
	for i, st := range doc.Statements {
		if err := emit(b.Body(), st); err != nil {
			return nil, &ParseError{File: file, Index: i, Err: err}
		}
	}

	prog, err := b.Build()
	if err != nil {
		return nil, &ParseError{File: file, Index: -1, Err: err}
	}
	return prog, nil
}

// emit appends one statement, recursing into if branches.
func emit(block *dsl.Block, st dto.StatementDocument) error {
	kinds := 0
	for _, set := range []bool{st.Assign != "", st.Reply != nil, st.If != nil} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return errors.New("statement must have exactly one of assign, reply, if")
	}

	switch {
	case st.Assign != "":
		v, err := parseExpr(st.Value)
		if err != nil {
			return fmt.Errorf("assign %s: %w", st.Assign, err)
		}
		block.Assign(st.Assign, v)

	case st.Reply != nil:
		v, err := parseExpr(st.Reply)
		if err != nil {
			return fmt.Errorf("reply: %w", err)
		}
		block.Reply(v)

	default:
		cond, err := parseExpr(st.If)
		if err != nil {
			return fmt.Errorf("if: %w", err)
		}
		var branchErr error
		branch := func(label string, stmts []dto.StatementDocument) func(*dsl.Block) {
			return func(b *dsl.Block) {
				for j, s := range stmts {
					if err := emit(b, s); err != nil && branchErr == nil {
						branchErr = fmt.Errorf("%s[%d]: %w", label, j, err)
					}
				}
			}
		}
		block.If(cond, branch("then", st.Then), branch("else", st.Else))
		if branchErr != nil {
			return branchErr
		}
	}
	return nil
}
