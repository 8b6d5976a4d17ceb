package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegexScannerScripts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "default import",
			src:  `import React from "react";`,
			want: []string{"react"},
		},
		{
			name: "named and namespace imports",
			src: `import { a, b as c } from './a';
import * as ns from '../ns';
import Def, { x } from "@/lib/def";`,
			want: []string{"../ns", "./a", "@/lib/def"},
		},
		{
			name: "multi-line named import",
			src: `import {
  Button,
  type ButtonProps,
} from '@/components/ui/button';`,
			want: []string{"@/components/ui/button"},
		},
		{
			name: "comments inside a named import list",
			src: `import {
  Hero, // above the fold
  /* below */ Footer,
} from './sections';`,
			want: []string{"./sections"},
		},
		{
			name: "quote directly after from",
			src:  `import x from'./x';import {y}from"./y"`,
			want: []string{"./x", "./y"},
		},
		{
			name: "type-only import",
			src:  `import type { Metadata } from 'next';`,
			want: []string{"next"},
		},
		{
			name: "side-effect import",
			src:  `import './globals.css';`,
			want: []string{"./globals.css"},
		},
		{
			name: "dynamic import",
			src: `const Chart = dynamic(() => import('@/components/chart'), { ssr: false });
const mod = await import(` + "`./lazy`" + `);`,
			want: []string{"./lazy", "@/components/chart"},
		},
		{
			name: "dynamic import and require with magic comments",
			src: `const Chart = lazy(() => import(/* webpackChunkName: "chart" */ './chart'));
const cfg = require(/* inline */ "./config");`,
			want: []string{"./chart", "./config"},
		},
		{
			name: "dynamic import with substitution is missed",
			src:  "const page = await import(`./pages/${name}`);",
			want: []string{},
		},
		{
			name: "re-exports",
			src: `export * from './a';
export * as b from './b';
export { c, type D } from "./c";
export type { E } from './e';`,
			want: []string{"./a", "./b", "./c", "./e"},
		},
		{
			name: "local export is not a specifier",
			src:  `export const from = 'x';`,
			want: []string{},
		},
		{
			name: "require",
			src:  `const fs = require('fs'); const cfg = require("./config.cjs");`,
			want: []string{"./config.cjs", "fs"},
		},
		{
			name: "non-literal require is missed",
			src:  `const m = require(name);`,
			want: []string{},
		},
		{
			name: "duplicates collapse",
			src: `import a from './a';
import { b } from './a';
export * from './a';`,
			want: []string{"./a"},
		},
		{
			name: "mdx imports",
			src: `import { Callout } from '@/components/callout'

# Title

<Callout>hi</Callout>`,
			want: []string{"@/components/callout"},
		},
	}

	s := NewRegexScanner()
	defer s.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Scan("file.tsx", []byte(tt.src), KindScript)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegexScannerStylesheets(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"single quotes", `@import 'reset.css';`, []string{"reset.css"}},
		{"double quotes", `@import "./tokens.css";`, []string{"./tokens.css"}},
		{"url", `@import url(./theme.css);`, []string{"./theme.css"}},
		{"quoted url with media", `@import url("print.css") print;`, []string{"print.css"}},
		{"package", `@import "tailwindcss";`, []string{"tailwindcss"}},
		{"sass modules", `@use 'sass:math'; @forward "./mixins";`, []string{"./mixins", "sass:math"}},
		{"no imports", `body { margin: 0; }`, []string{}},
	}

	s := NewRegexScanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Scan("styles.css", []byte(tt.src), KindStylesheet))
		})
	}
}

func TestRegexScannerOtherKind(t *testing.T) {
	s := NewRegexScanner()
	got := s.Scan("a.txt", []byte(`import a from './a';`), KindOther)
	assert.Empty(t, got)

	got = s.Scan("a.ts", []byte(`@import 'x.css';`), KindStylesheet)
	assert.Equal(t, []string{"x.css"}, got)
}
