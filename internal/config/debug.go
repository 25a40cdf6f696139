// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/peterh/liner"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Evaluate parses input as an HCL expression and returns its value as JSON.
func Evaluate(input string, evalCtx *hcl.EvalContext) (string, error) {
	expression, diags := hclsyntax.ParseExpression([]byte(input), "repl.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return "", diags
	}

	value, diags := expression.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}

	out, err := ctyjson.Marshal(value, value.Type())
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// EnterDebugMode starts an interactive session evaluating HCL expressions
// against evalCtx. It returns when the user quits or ctx is cancelled.
func EnterDebugMode(ctx context.Context, evalCtx *hcl.EvalContext, out io.Writer) error {
	line := liner.NewLiner()

	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)
	fmt.Fprintln(out, "Entering debugging mode, press `quit` or `exit` or Ctrl+C to quit.") //nolint:errcheck

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		input, err := line.Prompt("debug> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "Aborted") //nolint:errcheck
				return nil
			}

			return fmt.Errorf("error reading line: %w", err)
		}

		if input == "quit" || input == "exit" {
			return nil
		}

		if input == "" {
			continue
		}

		line.AppendHistory(input)

		result, err := Evaluate(input, evalCtx)
		if err != nil {
			fmt.Fprintln(out, err.Error()) //nolint:errcheck
			continue
		}

		fmt.Fprintln(out, result) //nolint:errcheck
	}
}
