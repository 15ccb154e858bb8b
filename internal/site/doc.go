// Package site turns loaded content into a published static site.
//
// A build is a linear one-pass pipeline: load content, render posts, build
// indexes, assemble pages, copy assets, write feeds, verify links. Each stage
// records its duration and a classified outcome into a BuildReport; the first
// fatal or canceled stage aborts the run. Output is written to a sibling
// staging directory and atomically promoted on success, so a failed build
// never leaves a partial site behind.
package site
