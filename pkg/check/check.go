// Package check runs the project's static checks: the web templates have to
// parse, every static asset they reference has to exist, the task script has
// to load and declare the expected tasks and the config file (if present)
// has to validate.
package check

import (
	"context"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/aaelony/dx-fintools-fs/pkg/tasks"
	"github.com/aaelony/dx-fintools-fs/pkg/web"
	"github.com/aaelony/dx-fintools-fs/pkg/web/config"
)

// Finding is one problem discovered by the checks. A run with zero findings
// is a pass.
type Finding struct {
	Path    string
	Message string
}

// requiredTasks are the tasks every tasks.star file in this project has to
// declare, with a description so they show up properly in the task list.
var requiredTasks = []string{"check", "serve-web", "bundle-release-web"}

var staticRefPattern = regexp.MustCompile(`/static/([\w./-]+)`)

// Run executes all checks against the project rooted at projectRoot and
// returns the findings. The returned error covers failures of the check
// runner itself, not problems with the project.
func Run(ctx context.Context, projectRoot string) ([]Finding, error) {
	findings := make([]Finding, 0)

	assets, assetPath := projectAssets(projectRoot)
	findings = append(findings, checkTemplates(assets, assetPath)...)
	findings = append(findings, checkTaskScript(ctx, projectRoot)...)
	findings = append(findings, checkConfigFile(projectRoot)...)

	return findings, nil
}

// projectAssets prefers the asset sources in the working tree and falls back
// to the embedded copies when the binary runs outside the repository.
func projectAssets(projectRoot string) (fs.FS, string) {
	assetDir := filepath.Join(projectRoot, "pkg", "web", "assets")
	if _, err := os.Stat(assetDir); err == nil {
		return os.DirFS(assetDir), assetDir
	}

	return web.Assets(), "embedded assets"
}

func checkTemplates(assets fs.FS, assetPath string) []Finding {
	findings := make([]Finding, 0)

	tmpl, err := template.ParseFS(assets, "templates/*.tmpl")
	if err != nil {
		return append(findings, Finding{Path: assetPath, Message: err.Error()})
	}

	if tmpl.Lookup("index.html.tmpl") == nil {
		findings = append(findings, Finding{
			Path:    assetPath,
			Message: "templates/index.html.tmpl is missing",
		})
	}

	matches, err := fs.Glob(assets, "templates/*.tmpl")
	if err != nil {
		return append(findings, Finding{Path: assetPath, Message: err.Error()})
	}

	for _, name := range matches {
		content, err := fs.ReadFile(assets, name)
		if err != nil {
			findings = append(findings, Finding{Path: name, Message: err.Error()})
			continue
		}

		for _, ref := range staticRefPattern.FindAllStringSubmatch(string(content), -1) {
			target := path.Join("static", ref[1])
			if _, err := fs.Stat(assets, target); err != nil {
				findings = append(findings, Finding{
					Path:    name,
					Message: "references missing asset " + target,
				})
			}
		}
	}

	return findings
}

func checkTaskScript(ctx context.Context, projectRoot string) []Finding {
	scriptPath := filepath.Join(projectRoot, "tasks.star")
	if _, err := os.Stat(scriptPath); err != nil {
		return []Finding{{Path: scriptPath, Message: "tasks.star is missing"}}
	}

	logger := zerolog.Nop()
	taskList, _, err := tasks.Load(tasks.WithLogger(ctx, &logger), scriptPath, projectRoot, nil, true)
	if err != nil {
		return []Finding{{Path: scriptPath, Message: err.Error()}}
	}

	findings := make([]Finding, 0)
	for _, name := range requiredTasks {
		task, ok := taskList[name]
		if !ok {
			findings = append(findings, Finding{
				Path:    scriptPath,
				Message: "task " + name + " is not declared",
			})
			continue
		}

		if task.Desc == "" {
			findings = append(findings, Finding{
				Path:    scriptPath,
				Message: "task " + name + " has no description",
			})
		}
	}

	return findings
}

func checkConfigFile(projectRoot string) []Finding {
	cfgPath := filepath.Join(projectRoot, "fintools.toml")
	if _, err := os.Stat(cfgPath); err != nil {
		// the config file is optional
		return nil
	}

	cfg, loader := config.FileLoader(cfgPath)
	if err := loader.Load(); err != nil {
		return []Finding{{Path: cfgPath, Message: err.Error()}}
	}

	if err := cfg.Validate(); err != nil {
		return []Finding{{Path: cfgPath, Message: err.Error()}}
	}

	return nil
}
