// Package modules declares the dashboard modules: their store paths, column
// schemas, option lists, form templates and charts.
package modules
