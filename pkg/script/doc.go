// Package script provides the lexer and recursive-descent parser for the
// image-playground scripting language. It turns source text into a parse
// tree of Nodes that package ir compiles into three-address instructions.
//
// Pipeline: source → Lex → Parse → *Node (Kind List at the root)
package script
