// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/matt-FFFFFF/stoop/internal/variant"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var variantSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variant", LabelNames: []string{"key"}},
	},
}

// NewEvalContext returns the evaluation context for task file expressions.
// Every toolchain of resolver is available as variant.<key>.interpreter and
// every entry of env as env.<NAME>.
func NewEvalContext(resolver *variant.Resolver, env map[string]string) *hcl.EvalContext {
	variants := make(map[string]cty.Value)

	if resolver != nil {
		for _, tc := range resolver.Toolchains() {
			variants[tc.Key] = cty.ObjectVal(map[string]cty.Value{
				"key":         cty.StringVal(tc.Key),
				"interpreter": cty.StringVal(tc.Interpreter),
			})
		}
	}

	envVals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		envVals[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"variant": cty.ObjectVal(variants),
			"env":     cty.ObjectVal(envVals),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"join":   stdlib.JoinFunc,
			"concat": stdlib.ConcatFunc,
			"format": stdlib.FormatFunc,
		},
	}
}

// ParseHCL decodes an HCL task file.
func ParseHCL(filename string, data []byte, env map[string]string) (*File, error) {
	body, evalCtx, err := hclBody(filename, data, env)
	if err != nil {
		return nil, err
	}

	var f File
	if diags := gohcl.DecodeBody(body, evalCtx, &f); diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}

	return &f, nil
}

// HCLEvalContext returns the evaluation context that expressions in the
// given HCL file are evaluated against.
func HCLEvalContext(filename string, data []byte, env map[string]string) (*hcl.EvalContext, error) {
	_, evalCtx, err := hclBody(filename, data, env)

	return evalCtx, err
}

// hclBody parses the file and decodes its variant blocks first, so that the
// rest of the file can refer to them.
func hclBody(filename string, data []byte, env map[string]string) (hcl.Body, *hcl.EvalContext, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, nil, diagnosticsError(diags)
	}

	content, _, diags := file.Body.PartialContent(variantSchema)
	if diags.HasErrors() {
		return nil, nil, diagnosticsError(diags)
	}

	envCtx := NewEvalContext(nil, env)

	var (
		toolchains []variant.Toolchain
		merr       error
	)

	for _, block := range content.Blocks {
		var def VariantDefinition
		if diags := gohcl.DecodeBody(block.Body, envCtx, &def); diags.HasErrors() {
			merr = multierror.Append(merr, diags.Errs()...)
			continue
		}

		def.Key = block.Labels[0]
		toolchains = append(toolchains, def.Toolchain())
	}

	if merr != nil {
		return nil, nil, errors.Join(ErrParseTaskFile, merr)
	}

	resolver, err := variant.NewResolver(toolchains...)
	if err != nil {
		return nil, nil, errors.Join(ErrParseTaskFile, err)
	}

	return file.Body, NewEvalContext(resolver, env), nil
}

func diagnosticsError(diags hcl.Diagnostics) error {
	var merr error
	merr = multierror.Append(merr, diags.Errs()...)

	return errors.Join(ErrParseTaskFile, merr)
}
