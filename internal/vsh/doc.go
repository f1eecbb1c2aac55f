// Package vsh decodes legacy vertex program microcode.
//
// A program is a sequence of 4-word tokens. Each token may co-issue one MAC
// (multiply-accumulate) and one ILU (inverse/lighting) operation. Decode
// splits tokens into single-operation intermediate instructions that the
// shader generator can translate one by one.
package vsh
