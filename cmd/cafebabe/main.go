// Cafebabe CLI - parses a JVM class file and runs its entry method.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"cafebabe/classfile"
	"cafebabe/index"
	"cafebabe/manifest"
	"cafebabe/vm"
	"cafebabe/wire"
)

var classMagic = []byte{0xCA, 0xFE, 0xBA, 0xBE}

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	dump := flag.Bool("dump", false, "Write a canonical CBOR class summary instead of running")
	output := flag.String("o", "", "Write -dump output to this file instead of stdout")
	record := flag.Bool("index", false, "Record the class into the catalog instead of running")
	entry := flag.String("m", "", "Entry method name (default from cafebabe.toml, else 'main')")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cafebabe [options] <file.class>\n\n")
		fmt.Fprintf(os.Stderr, "Parses the class file and executes its entry method.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cafebabe Main.class              # parse and run main\n")
		fmt.Fprintf(os.Stderr, "  cafebabe -m start Main.class     # run method 'start'\n")
		fmt.Fprintf(os.Stderr, "  cafebabe -dump Main.class        # CBOR summary to stdout\n")
		fmt.Fprintf(os.Stderr, "  cafebabe -index Main.class       # record into the class catalog\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	m, err := manifest.FindAndLoad(filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error loading %s: %v\n", manifest.ManifestName, err)
	}
	if m == nil {
		m = manifest.Default()
	}

	verbosity := 1
	if *verbose || m.Log.Verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	cf, err := classfile.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}

	if err := sanityCheck(cf, m, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *dump:
		err = dumpSummary(cf, *output)
	case *record:
		err = recordClass(cf, m, path)
	default:
		entryName := m.Run.Entry
		if *entry != "" {
			entryName = *entry
		}
		interp := vm.New(cf)
		err = interp.Run(entryName)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sanityCheck re-validates the magic bytes and compares the resolved class
// names against the manifest's expectations. These are launch-shell checks,
// not parser contract.
func sanityCheck(cf *classfile.ClassFile, m *manifest.Manifest, path string) error {
	if !bytes.Equal(cf.Magic[:], classMagic) {
		return fmt.Errorf("class magic should be CA FE BA BE, but got % 02X", cf.Magic)
	}

	thisName, err := cf.ThisClassName()
	if err != nil {
		return fmt.Errorf("resolving this_class name: %w", err)
	}
	superName, err := cf.SuperClassName()
	if err != nil {
		return fmt.Errorf("resolving super_class name: %w", err)
	}

	expectThis := m.Run.ExpectThis
	if expectThis == "" {
		expectThis = strings.TrimSuffix(filepath.Base(path), ".class")
	}
	if thisName != expectThis {
		return fmt.Errorf("class name is %q, expected %q", thisName, expectThis)
	}
	if m.Run.ExpectSuper != "" && superName != m.Run.ExpectSuper {
		return fmt.Errorf("super class is %q, expected %q", superName, m.Run.ExpectSuper)
	}
	return nil
}

func dumpSummary(cf *classfile.ClassFile, output string) error {
	summary, err := wire.Summarize(cf)
	if err != nil {
		return err
	}
	data, err := wire.MarshalSummary(summary)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

func recordClass(cf *classfile.ClassFile, m *manifest.Manifest, path string) error {
	catalog, err := index.Open(m.IndexPath())
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.Record(path, cf); err != nil {
		return err
	}
	name, _ := cf.ThisClassName()
	fmt.Printf("Indexed %s (%s)\n", name, path)
	return nil
}
