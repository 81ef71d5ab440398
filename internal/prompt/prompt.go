package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// System is the system prompt sent with every request.
const System = `You are AutoCoder, an expert software engineer. You generate complete,
runnable projects and precise file edits. You ALWAYS reply with a single JSON object
and nothing else: no prose, no markdown outside the JSON fence.`

// generateTemplate asks the model for a complete project specification.
const generateTemplate = `Create a complete, runnable software project for this request:

{{DESCRIPTION}}

Reply with ONLY a JSON object of this exact shape:
{
  "name": "short-kebab-case-name",
  "type": "web|cli|script|api|other",
  "language": "python|node|go|other",
  "description": "one sentence",
  "files": [{"path": "relative/path", "content": "full file content"}],
  "dependencies": ["package names for the language's package manager"],
  "run_command": "command to run the project from its directory",
  "auto_run": false
}

Rules:
1. Every file must be complete and syntactically valid.
2. Prefer the simplest stack that satisfies the request.
3. "dependencies" lists only third-party packages, not the standard library.
4. Set "auto_run" true only for projects that are safe to start immediately.
`

// editTemplate asks the model for a change set against an existing project.
const editTemplate = `You are editing an existing project.

Project metadata:
{{PROJECT_INFO}}

Current files:
{{PROJECT_FILES}}

Instruction:
{{INSTRUCTION}}

Reply with ONLY a JSON object of this exact shape:
{
  "summary": "one sentence describing the change",
  "files": [{"path": "relative/path", "content": "full new file content"}]
}

Rules:
1. Include every file you modify or add, each with its COMPLETE new content.
2. Do not include files that are unchanged.
3. Keep the project's language and structure.
`

// fixTemplate asks the model to repair a failed run.
const fixTemplate = `A project failed to run. Diagnose the error and fix it.

Project metadata:
{{PROJECT_INFO}}

Current files:
{{PROJECT_FILES}}

Captured error output:
{{ERROR_OUTPUT}}

Reply with ONLY a JSON object of this exact shape:
{
  "summary": "one sentence describing the fix",
  "files": [{"path": "relative/path", "content": "full new file content"}]
}

Rules:
1. Fix the root cause, not just the symptom.
2. Include every file you modify, each with its COMPLETE new content.
3. If a dependency is missing, add the import or adjust the code rather than
   assuming the environment will change.
`

// Generate builds the project generation prompt.
func Generate(description string) string {
	return strings.ReplaceAll(generateTemplate, "{{DESCRIPTION}}", description)
}

// Edit builds the project edit prompt.
func Edit(info, files, instruction string) string {
	result := editTemplate
	result = strings.ReplaceAll(result, "{{PROJECT_INFO}}", info)
	result = strings.ReplaceAll(result, "{{PROJECT_FILES}}", files)
	result = strings.ReplaceAll(result, "{{INSTRUCTION}}", instruction)
	return result
}

// Fix builds the error repair prompt.
func Fix(info, files, errorOutput string) string {
	result := fixTemplate
	result = strings.ReplaceAll(result, "{{PROJECT_INFO}}", info)
	result = strings.ReplaceAll(result, "{{PROJECT_FILES}}", files)
	result = strings.ReplaceAll(result, "{{ERROR_OUTPUT}}", errorOutput)
	return result
}

// FormatFiles renders project files for inclusion in a prompt. Each file is
// framed with a header line so the model can tell them apart.
func FormatFiles(files map[string]string) string {
	if len(files) == 0 {
		return "(no files)"
	}

	var b strings.Builder
	for _, path := range sortedKeys(files) {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", path, files[path])
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
