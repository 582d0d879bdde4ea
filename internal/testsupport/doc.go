// Package testsupport builds isolated configurations, stub executables and
// history stores for tests across tubescribe.
package testsupport
