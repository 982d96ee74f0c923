// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the panel's custom binding validators on
// gin's validator engine. Call once before serving.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// matchname: the canonical "Home vs Away" form used as analysis key.
	_ = v.RegisterValidation("matchname", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		i := strings.Index(s, " vs ")
		return i > 0 && i+4 < len(s)
	})
}
