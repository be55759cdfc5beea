package site

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"etldocs/internal/faults"
)

// Config is the static-site configuration record. Field order matters: the
// YAML output keeps keys in exactly this order.
type Config struct {
	SiteName           string     `yaml:"site_name"`
	SiteDescription    string     `yaml:"site_description"`
	SiteURL            string     `yaml:"site_url,omitempty"`
	RepoURL            string     `yaml:"repo_url,omitempty"`
	RepoName           string     `yaml:"repo_name,omitempty"`
	DocsDir            string     `yaml:"docs_dir"`
	SiteDir            string     `yaml:"site_dir"`
	Theme              Theme      `yaml:"theme"`
	MarkdownExtensions []string   `yaml:"markdown_extensions"`
	Nav                []NavEntry `yaml:"nav"`
}

type Theme struct {
	Name     string   `yaml:"name"`
	Palette  Palette  `yaml:"palette"`
	Features []string `yaml:"features"`
}

type Palette struct {
	Scheme  string `yaml:"scheme"`
	Primary string `yaml:"primary"`
	Accent  string `yaml:"accent"`
}

// NavEntry is one navigation item. It serializes the MkDocs way, as a
// single-key mapping of label to page path.
type NavEntry struct {
	Label string
	Path  string
}

func (e NavEntry) MarshalYAML() (any, error) {
	return map[string]string{e.Label: e.Path}, nil
}

// NewConfig builds a site configuration with the fixed recognized options.
// repo, when non-empty, is OWNER/NAME and drives the derived URLs.
func NewConfig(siteName, siteDescription, docsDir, repo string) *Config {
	c := &Config{
		SiteName:        siteName,
		SiteDescription: siteDescription,
		DocsDir:         docsDir,
		SiteDir:         "site",
		Theme: Theme{
			Name: "material",
			Palette: Palette{
				Scheme:  "default",
				Primary: "indigo",
				Accent:  "indigo",
			},
			Features: []string{
				"navigation.sections",
				"navigation.top",
				"search.highlight",
			},
		},
		MarkdownExtensions: []string{
			"admonition",
			"tables",
			"toc",
		},
		Nav: []NavEntry{
			{Label: "Home", Path: "index.md"},
			{Label: "Data Report", Path: "data_report.md"},
		},
	}
	if repo != "" {
		c.SiteURL = PagesURL(repo)
		c.RepoURL = "https://github.com/" + repo
		c.RepoName = repo
	}
	return c
}

// PagesURL derives the documentation URL for an OWNER/NAME repository.
func PagesURL(repo string) string {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		return ""
	}
	return fmt.Sprintf("https://%s.github.io/%s/", owner, name)
}

// Write serializes the configuration to path as YAML, replacing any
// previous file in one atomic step.
func (c *Config) Write(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return faults.TemplateFailure(fmt.Errorf("serialize site config: %w", err))
	}
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return faults.IOFailure(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}
