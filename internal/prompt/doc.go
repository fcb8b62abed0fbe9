// Package prompt collects confirmations and free-text answers from the operator.
package prompt
