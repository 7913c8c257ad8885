// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/dlsort/pkg/rules"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
//	download_dir = "${home}/Downloads"
//
//	rule "images" {
//	  extensions = [".jpg", ".png"]
//	  target     = "Images"
//	}
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

type hclRule struct {
	Name       string   `hcl:"name,label"`
	Extensions []string `hcl:"extensions,optional"`
	Target     string   `hcl:"target"`
}

type hclConfig struct {
	DownloadDir      string    `hcl:"download_dir,optional"`
	DestinationRoot  string    `hcl:"destination_root,optional"`
	IgnoreExtensions []string  `hcl:"ignore_extensions,optional"`
	IgnorePatterns   []string  `hcl:"ignore_patterns,optional"`
	DateSubdir       string    `hcl:"date_subdir,optional"`
	Rules            []hclRule `hcl:"rule,block"`
}

// 📝 Parse parses the config from HCL. The variable "home" holds the user's
// home directory.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", strings.TrimSpace(diags.Error()))
	}

	vars := map[string]cty.Value{}
	if home, err := os.UserHomeDir(); err == nil {
		vars["home"] = cty.StringVal(home)
	}
	evalCtx := &hcl.EvalContext{
		Variables: vars,
	}

	var hc hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", strings.TrimSpace(diags.Error()))
	}

	cfg := &Config{
		DownloadDir:      hc.DownloadDir,
		DestinationRoot:  hc.DestinationRoot,
		IgnoreExtensions: hc.IgnoreExtensions,
		IgnorePatterns:   hc.IgnorePatterns,
		DateSubdir:       hc.DateSubdir,
	}
	for _, r := range hc.Rules {
		cfg.Rules = append(cfg.Rules, rules.Rule{
			Name:       r.Name,
			Extensions: r.Extensions,
			Target:     r.Target,
		})
	}

	return cfg, nil
}
