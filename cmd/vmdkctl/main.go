// Command vmdkctl inspects and creates VMDK disk images from the command
// line: "create" bootstraps a new image of a given capacity and
// create-type, "info" prints descriptor and extent details for an
// existing one, and "type" reports just its create-type string.
package main

import (
	"fmt"
	"os"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/alecthomas/units"
	times "gopkg.in/djherbis/times.v1"
	"github.com/sirupsen/logrus"

	vmdk "github.com/diskfs/go-vmdk"
	"github.com/diskfs/go-vmdk/util"
)

var (
	app = kingpin.New("vmdkctl", "Inspect and create VMDK disk images.")

	verbose = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()

	createCmd      = app.Command("create", "Create a new VMDK image.")
	createPath     = createCmd.Arg("file", "Path of the image to create").Required().String()
	createSize     = createCmd.Flag("size", "Capacity, e.g. 10GiB, 512MiB").Required().String()
	createTypeFlag = createCmd.Flag("type", "Create type: monolithicSparse, monolithicFlat, twoGbMaxExtentSparse, twoGbMaxExtentFlat, vmfs, vmfsSparse").
			Default("monolithicSparse").String()

	infoCmd  = app.Command("info", "Print descriptor and extent details.")
	infoPath = infoCmd.Arg("file", "Path of the image to inspect").Required().String()
	infoHex  = infoCmd.Flag("hex", "Also dump the re-serialized descriptor text as a hex/ASCII listing.").Bool()

	typeCmd  = app.Command("type", "Print the image's create type.")
	typePath = typeCmd.Arg("file", "Path of the image to inspect").Required().String()
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case createCmd.FullCommand():
		doCreate()
	case infoCmd.FullCommand():
		doInfo()
	case typeCmd.FullCommand():
		doType()
	}
}

func doCreate() {
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	size, err := units.ParseStrictBytes(*createSize)
	kingpin.FatalIfError(err, "invalid --size")

	createType, err := vmdk.ParseCreateType(*createTypeFlag)
	kingpin.FatalIfError(err, "invalid --type")

	disk, err := vmdk.Initialize(*createPath, size, createType)
	kingpin.FatalIfError(err, "creating image")
	defer disk.Close()

	fmt.Printf("created %s: %s, capacity %s\n", *createPath, createType, units.Base2Bytes(disk.Capacity()))
}

func doInfo() {
	disk, err := vmdk.Open(*infoPath, vmdk.AccessRead)
	kingpin.FatalIfError(err, "opening image")
	defer disk.Close()

	fmt.Printf("path:          %s\n", *infoPath)
	fmt.Printf("capacity:      %s\n", units.Base2Bytes(disk.Capacity()))
	fmt.Printf("sparse:        %v\n", disk.IsSparse())
	fmt.Printf("needs parent:  %v\n", disk.NeedsParent())
	if disk.NeedsParent() {
		fmt.Printf("parent hint:   %s\n", disk.ParentLocation())
	}

	desc := disk.Descriptor()
	fmt.Printf("create type:   %s\n", desc.CreateType)
	fmt.Printf("geometry:      %d/%d/%d (C/H/S)\n", desc.Geometry.Cylinders, desc.Geometry.Heads, desc.Geometry.Sectors)
	for i, ext := range desc.Extents {
		fmt.Printf("extent %d:      %s %d sectors %q\n", i, ext.Type, ext.SizeSectors, ext.Filename)
	}

	if t, err := times.Stat(*infoPath); err == nil {
		fmt.Printf("modified:      %s\n", t.ModTime())
		if t.HasChangeTime() {
			fmt.Printf("changed:       %s\n", t.ChangeTime())
		}
	}

	if *infoHex {
		fmt.Println()
		fmt.Print(util.DumpByteSlice(disk.Descriptor().Serialize(), 16, true, true, false, nil))
	}
}

func doType() {
	disk, err := vmdk.Open(*typePath, vmdk.AccessRead)
	kingpin.FatalIfError(err, "opening image")
	defer disk.Close()

	fmt.Println(disk.CreateType())
}
