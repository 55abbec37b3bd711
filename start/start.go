// Copyright 2022-2024 The Vidmash Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	stdLog "log"
	"os"

	"vidmash"
)

func main() {
	envFlag := flag.String("env", "/var/lib/vidmash/configs/env.yaml", "path to env.yaml")
	flag.Parse()

	if _, err := os.Stat(*envFlag); os.IsNotExist(err) {
		stdLog.Fatal(fmt.Errorf("--env %v: %w", *envFlag, os.ErrNotExist))
	}

	if err := vidmash.Run(*envFlag); err != nil {
		stdLog.Fatal(fmt.Errorf("run: %w", err))
	}
}
