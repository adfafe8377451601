// Package site drives a complete build: it loads the localization table,
// discovers templates, resets the output root and then, locale by locale,
// replicates assets and renders every page with a fresh render.Engine.
//
// Everything that can fail because of bad input (the strings file, the
// ignore file, template syntax) is checked before the output root is
// touched, so a rejected build leaves the previous output in place.
package site
