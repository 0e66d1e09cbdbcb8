// Command lingclip manages a library of transcribed media and cuts
// caption-burned clips from it for language study.
package main
