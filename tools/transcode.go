//go:build ignore

// transcode is a development utility to inspect both directions of the
// converter on a raw model message.
// Run with: go run tools/transcode.go --mode decode --file message.txt
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/answerkit/transcoder-go/transcoder"
)

func main() {
	mode := flag.String("mode", "decode", "decode|encode|summarize")
	file := flag.String("file", "", "raw message file")
	model := flag.String("model", "gpt-4", "tokenizer model for summarize")
	flag.Parse()
	if *file == "" {
		fmt.Println("missing --file")
		os.Exit(1)
	}
	body, err := os.ReadFile(*file)
	if err != nil {
		panic(err)
	}
	article := transcoder.Decode(string(body))

	switch *mode {
	case "decode":
		fmt.Println(article.Body)
		if article.Conclusion != nil {
			fmt.Println()
			fmt.Println("conclusion:", *article.Conclusion)
		}
	case "encode":
		fmt.Println(article.Encode())
	case "summarize":
		out, err := article.EncodeSummarized(*model)
		if err != nil {
			panic(err)
		}
		fmt.Println(out)
	default:
		fmt.Printf("unknown mode %q\n", *mode)
		os.Exit(1)
	}
}
