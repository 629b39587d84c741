// Package normalisers groups the value reshaping shared by the services.
//
// The record package turns decoded JSON records into flat table rows and
// renders timestamps in US Eastern time. The identifier package cleans
// columns of conversation IDs.
package normalisers
