// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Command commonmark reads a CommonMark document from standard input and
// writes its rendered HTML to standard output.
package main

import (
	"io"
	"log"
	"os"

	"github.com/mdcore/commonmark"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("commonmark: ")

	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("read stdin: %v", err)
	}
	if _, err := os.Stdout.Write(commonmark.ToHTML(source)); err != nil {
		log.Fatalf("write stdout: %v", err)
	}
}
