package api

import (
	"strings"
	"testing"
)

const specJSON = `{
  "name": "todo-app",
  "type": "web",
  "language": "python",
  "description": "a todo list",
  "files": [{"path": "main.py", "content": "print('hi')"}],
  "dependencies": ["flask"],
  "run_command": "python main.py",
  "auto_run": false
}`

func TestParseProjectSpec(t *testing.T) {
	spec, err := ParseProjectSpec(specJSON)
	if err != nil {
		t.Fatalf("ParseProjectSpec failed: %v", err)
	}
	if spec.Name != "todo-app" {
		t.Errorf("Name = %q", spec.Name)
	}
	if spec.Language != "python" {
		t.Errorf("Language = %q", spec.Language)
	}
	if len(spec.Files) != 1 || spec.Files[0].Path != "main.py" {
		t.Errorf("Files = %+v", spec.Files)
	}
	if spec.AutoRun {
		t.Error("AutoRun should be false")
	}
}

func TestParseProjectSpecFromFencedReply(t *testing.T) {
	raw := "Here is your project:\n```json\n" + specJSON + "\n```\nEnjoy!"
	spec, err := ParseProjectSpec(raw)
	if err != nil {
		t.Fatalf("ParseProjectSpec failed on fenced reply: %v", err)
	}
	if spec.Name != "todo-app" {
		t.Errorf("Name = %q", spec.Name)
	}
}

func TestParseProjectSpecRejectsIncomplete(t *testing.T) {
	cases := map[string]string{
		"no name":     `{"files": [{"path": "a", "content": "x"}]}`,
		"no files":    `{"name": "x"}`,
		"empty path":  `{"name": "x", "files": [{"path": "", "content": "y"}]}`,
		"not json":    `sorry, I cannot do that`,
		"empty reply": ``,
	}
	for label, raw := range cases {
		if _, err := ParseProjectSpec(raw); err == nil {
			t.Errorf("%s: expected an error", label)
		}
	}
}

func TestParseChangeSet(t *testing.T) {
	raw := "```\n" + `{"summary": "add dark mode", "files": [{"path": "style.css", "content": "body{}"}]}` + "\n```"
	changes, err := ParseChangeSet(raw)
	if err != nil {
		t.Fatalf("ParseChangeSet failed: %v", err)
	}
	if changes.Summary != "add dark mode" {
		t.Errorf("Summary = %q", changes.Summary)
	}
	if len(changes.Files) != 1 {
		t.Errorf("Files = %+v", changes.Files)
	}
}

func TestParseChangeSetRejectsEmpty(t *testing.T) {
	if _, err := ParseChangeSet(`{"summary": "nothing", "files": []}`); err == nil {
		t.Error("change set with no files should be rejected")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose before {\"a\": 1} prose after", `{"a": 1}`},
		{"  \n {\"a\": {\"b\": 2}} \n", `{"a": {"b": 2}}`},
	}
	for _, tc := range cases {
		if got := ExtractJSON(tc.in); got != tc.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractJSONKeepsBracesInStrings(t *testing.T) {
	raw := `{"content": "if (x) { return; }"}`
	got := ExtractJSON(raw)
	if !strings.HasPrefix(got, "{") || !strings.HasSuffix(got, "}") {
		t.Errorf("ExtractJSON mangled %q into %q", raw, got)
	}
}
