// Command chargerctl inspects and drives a MAX77975/MAX77976 charger from
// a Linux host over I²C.
package main

import "log"

func main() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
