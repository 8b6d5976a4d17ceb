package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeFindUnusedFiles() string {
	return `Finds source files in a JS/TS web project that no entry point reaches through imports.

USE WHEN:
- Cleaning up a project after a feature was removed
- Checking whether a component or helper is still imported anywhere
- Reviewing a refactor that moved or renamed modules

INTERPRETING RESULTS:
- roots: entry points the framework loads directly (pages, layouts, routes, middleware) and global stylesheets
- unused: files no root reaches through static, dynamic, re-export, require or stylesheet imports
- Declaration files and the types directory are never listed
- Files loaded only by framework conventions not covered by the entry patterns, or referenced by dynamic string concatenation, show up as unused

METRICS RETURNED:
- roots, usedCount, candidateCount, unusedCount, unused (sorted project-relative paths)`
}

func describeImportGraph() string {
	return `Returns the resolved import graph between source files of a JS/TS web project.

USE WHEN:
- Explaining why a file is or is not reachable
- Finding what a module depends on before moving it
- Spotting import cycles

INTERPRETING RESULTS:
- nodes are project-relative file paths; entry points are marked as roots
- edges point from the importing file to the imported file
- Imports of packages, builtins, and files outside the source root are not edges
- cycles lists groups of files that import each other

METRICS RETURNED:
- nodes, edges, cycles`
}
