package main

// Import the language packages to register them
import (
	_ "github.com/roveo/codejump/languages/golang"
	_ "github.com/roveo/codejump/languages/java"
)
