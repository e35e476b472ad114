package xlnest

import (
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/javajack/xlnest/header"
	"github.com/javajack/xlnest/schema"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Schema cannot be exported
	SeverityWarning                 // Schema may produce unexpected output
)

// ValidationIssue is a single problem found in a schema.
type ValidationIssue struct {
	Severity Severity
	Node     string // slash-separated header names from the root
	Message  string
}

// String formats the issue as "[ERROR] Book/Author: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Node, v.Message)
}

// ValidateFile decodes a YAML schema and validates it. A non-nil error means
// the file could not be read or decoded at all.
func ValidateFile(path string) ([]ValidationIssue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema %q: %w", path, err)
	}
	defer f.Close()

	doc, err := schema.Decode(f)
	if err != nil {
		return nil, err
	}
	return Validate(doc.Root), nil
}

// Validate checks a schema node tree without any data. Errors mean Build or
// the layout would fail; warnings flag shapes that export but are likely
// mistakes.
func Validate(root schema.Node) []ValidationIssue {
	issues := validateNode(root, nil, true)
	if hasErrors(issues) {
		return issues
	}

	s, err := schema.Build(root)
	if err != nil {
		return append(issues, ValidationIssue{Severity: SeverityError, Node: root.Name, Message: err.Error()})
	}
	if _, err := header.Calculate(s.Headers); err != nil {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Node: root.Name, Message: err.Error()})
	}
	return issues
}

func validateNode(n schema.Node, trail []string, isRoot bool) []ValidationIssue {
	trail = append(trail, n.Name)
	where := strings.Join(trail, "/")
	var issues []ValidationIssue
	add := func(sev Severity, format string, args ...any) {
		issues = append(issues, ValidationIssue{Severity: sev, Node: where, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(n.Name) == "" {
		add(SeverityError, "header name is empty")
	}
	isLeaf := len(n.Columns) == 0
	switch {
	case n.Field != nil:
	case n.Path == "" && isRoot && !isLeaf:
	case n.Path == "":
		add(SeverityError, "path is required")
	default:
		if _, err := expr.Compile(n.Path); err != nil {
			add(SeverityError, "path %q does not compile: %v", n.Path, err)
		}
	}
	if isRoot && !isLeaf && n.Path != "" {
		add(SeverityWarning, "path %q on the main header is ignored; each exported object is the root", n.Path)
	}
	if isLeaf && n.Many {
		add(SeverityWarning, "leaf %q is marked many; the whole collection is written into one cell", n.Name)
	}

	seen := make(map[string]bool, len(n.Columns))
	for _, c := range n.Columns {
		if c.Name != "" && seen[c.Name] {
			add(SeverityWarning, "duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		issues = append(issues, validateNode(c, trail, false)...)
	}
	return issues
}

func hasErrors(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
