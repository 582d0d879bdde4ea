// Package preflight provides readiness checks for the external tools and
// filesystem paths tubescribe depends on.
//
// The fetch command calls RunAll before doing any work and refuses to start
// when a required check fails. The status command shows every check plus the
// credential and capability choices the option builder would make.
package preflight
