// Package preflight checks that a recipe can run before any file is touched.
//
// These checks run in two contexts:
//   - The engine calls Recipe before each recipe run. A failed check turns
//     into a per-recipe error; other recipes still run.
//   - The CLI "fileorganizer check" command prints every result.
package preflight
