// Package model holds shop types whose package name clashes with the blog
// model package.
package model

type Base struct{}

type User struct {
	Base
}
