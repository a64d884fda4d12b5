package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/portfolio-studio/engine/internal/models"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/storage"
)

// GeneratedFile is a TypeScript data module consumed by the static site build.
type GeneratedFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type moduleExport struct {
	name     string
	typeName string
	value    any
}

var moduleTypes = map[models.Domain]string{
	models.DomainPersonalInfo: `export interface PersonalInfo {
  name: string;
  role: string;
  bio: string;
  email: string;
  location: string;
  github: string;
  linkedin: string;
  twitter?: string;
  website?: string;
}
`,
	models.DomainExperience: `export interface Experience {
  title: string;
  company: string;
  period: string;
  description: string;
  color: "primary" | "accent";
}

export interface Education {
  degree: string;
  school: string;
  period: string;
  description: string;
}
`,
	models.DomainProjects: `export interface Project {
  title: string;
  description: string;
  longDescription?: string;
  tags: string[];
  highlight?: string;
  features?: string[];
  challenges?: string[];
  technologies?: string[];
  githubUrl?: string;
  liveUrl?: string;
  duration?: string;
  teamSize?: string;
  role?: string;
}
`,
	models.DomainContactConfig: `export interface ContactConfig {
  service: "formspree" | "netlify" | "custom" | "none";
  endpoint?: string;
}
`,
	models.DomainResume: `export interface Resume {
  fileName: string;
  originalName: string;
  size: number;
}
`,
}

// GenerateModule renders the data module for one domain. value must be the domain's persisted shape.
func GenerateModule(domain models.Domain, value any) (GeneratedFile, error) {
	var exports []moduleExport
	switch domain {
	case models.DomainPersonalInfo:
		exports = []moduleExport{{"personalInfo", "PersonalInfo", value}}
	case models.DomainSkills:
		exports = []moduleExport{{"skills", "string[]", value}}
	case models.DomainExperience:
		exp, ok := value.(models.Experience)
		if !ok {
			return GeneratedFile{}, appErr.New(appErr.CodeInvalid, fmt.Sprintf("experience module needs models.Experience, got %T", value))
		}
		exp = exp.Normalize()
		exports = []moduleExport{
			{"workExperience", "Experience[]", exp.WorkExperience},
			{"education", "Education[]", exp.Education},
		}
	case models.DomainProjects:
		exports = []moduleExport{{"projects", "Project[]", value}}
	case models.DomainContactConfig:
		exports = []moduleExport{{"contactConfig", "ContactConfig", value}}
	case models.DomainResume:
		exports = []moduleExport{{"resume", "Resume", value}}
	default:
		return GeneratedFile{}, appErr.New(appErr.CodeInvalid, fmt.Sprintf("no module for domain %q", domain))
	}

	var sb strings.Builder
	if t, ok := moduleTypes[domain]; ok {
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	for i, e := range exports {
		b, err := json.MarshalIndent(e.value, "", "  ")
		if err != nil {
			return GeneratedFile{}, appErr.Wrap(err, appErr.CodeInternal, "encode module value failed")
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "export const %s: %s = %s;\n", e.name, e.typeName, b)
	}
	return GeneratedFile{Filename: string(domain) + ".ts", Content: sb.String()}, nil
}

// ModuleWriter writes generated modules into the site's data directory.
type ModuleWriter struct {
	fs billy.Filesystem
}

func NewModuleWriter(fs billy.Filesystem) *ModuleWriter {
	return &ModuleWriter{fs: fs}
}

func (w *ModuleWriter) Write(f GeneratedFile) error {
	if err := storage.WriteFileAtomic(w.fs, f.Filename, []byte(f.Content), 0o644); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "write module failed").WithMeta("file", f.Filename)
	}
	return nil
}
