package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	json2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/fulldump/snapdb/stream"
)

// streamdump decodes a replication stream and prints it as NDJSON, one line
// for the header and one per record. Handy to inspect what a send produced:
//
//	curl -s -X POST localhost:8080/v1/streams:send -d '{"to":"tank/data@monday"}' | streamdump
func main() {

	path := flag.String("path", "", "print only this field of every line, for example 'key'")
	flag.Parse()

	input := io.Reader(os.Stdin)
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Println("ERROR:", err.Error())
			os.Exit(1)
		}
		defer f.Close()
		input = f
	}

	r, err := stream.NewReader(input)
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(1)
	}

	jsonEncoder := jsontext.NewEncoder(os.Stdout)

	emit := func(payload []byte) {
		if *path != "" {
			fmt.Println(gjson.GetBytes(payload, *path).String())
			return
		}
		jsonEncoder.WriteValue(payload)
	}

	payload, err := json2.Marshal(r.Header())
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(2)
	}
	emit(payload)

	for i := 0; true; i++ {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("ERROR:", err.Error())
			os.Exit(2)
		}

		payload, err := json2.Marshal(rec)
		if err != nil {
			fmt.Println("ERROR:", err.Error())
			os.Exit(2)
		}
		payload, _ = sjson.SetBytes(payload, "i", i)
		emit(payload)
	}
}
