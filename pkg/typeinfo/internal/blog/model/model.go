// Package model holds blog types whose package name clashes with the shop
// model package.
package model

type User struct{}
