// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"

	"github.com/codeflow-engine/autopr-desktop/internal/output"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func OutputValidator(value any) error {
	if s, ok := value.(string); ok && output.ValidFormat(s) {
		return nil
	}
	return fmt.Errorf("must be one of %v", output.Formats)
}
