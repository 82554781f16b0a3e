package vmdk

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ExtentDescriptor names one extent file (or a byte range within one,
// for raw/flat extents sharing a backing file), per spec.md §3.
type ExtentDescriptor struct {
	Access        AccessMode
	SizeSectors   int64
	Type          ExtentType
	Filename      string
	OffsetSectors int64 // within Filename, for raw/flat sharing a backing file
}

// Descriptor is the textual manifest describing a VMDK's geometry,
// extents and parent linkage. It may be a standalone file or embedded
// within a sparse extent (see descriptor_probe.go).
type Descriptor struct {
	Version             int
	Encoding            string
	ContentID           uint32
	ParentContentID     uint32
	CreateType          CreateType
	Geometry            Geometry
	AdapterType         string
	UniqueID            string
	ParentFileNameHint  string
	Extents             []ExtentDescriptor
}

// NewDescriptor returns a Descriptor with the defaults a freshly
// initialized disk carries (no parent, windows-1252 encoding, version 1).
func NewDescriptor(createType CreateType) *Descriptor {
	return &Descriptor{
		Version:         1,
		Encoding:        "windows-1252",
		ContentID:       newContentID(),
		ParentContentID: NoParentContentID,
		CreateType:      createType,
		AdapterType:     "lsilogic",
	}
}

// HasParent reports whether the descriptor names a parent disk.
func (d *Descriptor) HasParent() bool {
	return d.ParentContentID != NoParentContentID
}

// CapacitySectors is the sum of all extent sizes, in sectors.
func (d *Descriptor) CapacitySectors() int64 {
	var total int64
	for _, e := range d.Extents {
		total += e.SizeSectors
	}
	return total
}

var (
	descriptorHeaderRegex = regexp.MustCompile(`^# Disk DescriptorFile`)
	extentSectionRegex    = regexp.MustCompile(`^# Extent description`)
	ddbSectionRegex       = regexp.MustCompile(`^# The Disk Data Base`)
	extentLineRegex       = regexp.MustCompile(`^(RW|RDONLY|NOACCESS) (\d+) ([A-Z]+) "([^"]+)"(?: (\d+))?`)
)

// accessTokens maps AccessMode to the descriptor's extent access token.
var accessTokens = map[AccessMode]string{
	AccessRead:      "RDONLY",
	AccessReadWrite: "RW",
}

func parseAccessToken(tok string) AccessMode {
	if tok == "RW" {
		return AccessReadWrite
	}
	return AccessRead
}

// descriptorSetters binds the scalar key=value / ddb.* lines to Descriptor
// fields, mirroring the line-oriented state machine a VMDK descriptor
// parser uses (no section is order-dependent beyond the three markers
// above).
func descriptorSetters(d *Descriptor) map[string]func(string) {
	return map[string]func(string){
		"version": func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				d.Version = n
			}
		},
		"encoding": func(v string) { d.Encoding = v },
		"CID": func(v string) {
			if n, err := strconv.ParseUint(v, 16, 32); err == nil {
				d.ContentID = uint32(n)
			}
		},
		"parentCID": func(v string) {
			if n, err := strconv.ParseUint(v, 16, 32); err == nil {
				d.ParentContentID = uint32(n)
			}
		},
		"createType": func(v string) {
			if ct, err := ParseCreateType(v); err == nil {
				d.CreateType = ct
			}
		},
		"parentFileNameHint": func(v string) { d.ParentFileNameHint = v },
		"ddb.adapterType":    func(v string) { d.AdapterType = v },
		"ddb.uuid":           func(v string) { d.UniqueID = v },
		"ddb.geometry.cylinders": func(v string) {
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				d.Geometry.Cylinders = uint32(n)
			}
		},
		"ddb.geometry.heads": func(v string) {
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				d.Geometry.Heads = uint32(n)
			}
		},
		"ddb.geometry.sectors": func(v string) {
			if n, err := strconv.ParseUint(v, 10, 32); err == nil {
				d.Geometry.Sectors = uint32(n)
			}
		},
	}
}

// ParseDescriptor parses a textual VMDK descriptor.
func ParseDescriptor(b []byte) (*Descriptor, error) {
	d := &Descriptor{ParentContentID: NoParentContentID}
	setters := descriptorSetters(d)

	state := ""
	sawHeader := false
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case descriptorHeaderRegex.MatchString(trimmed):
			sawHeader = true
			state = "descriptor"
			continue
		case extentSectionRegex.MatchString(trimmed):
			state = "extents"
			continue
		case ddbSectionRegex.MatchString(trimmed):
			state = "ddb"
			continue
		}

		switch state {
		case "descriptor", "ddb":
			parts := strings.SplitN(trimmed, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.Trim(strings.TrimSpace(parts[1]), `"`)
			if setter, ok := setters[key]; ok {
				setter(val)
			}
		case "extents":
			match := extentLineRegex.FindStringSubmatch(trimmed)
			if match == nil {
				continue
			}
			sizeSectors, err := strconv.ParseInt(match[2], 10, 64)
			if err != nil {
				return nil, &CorruptError{Reason: "bad extent size " + match[2]}
			}
			extentType, err := ParseExtentType(match[3])
			if err != nil {
				return nil, err
			}
			var offsetSectors int64
			if match[5] != "" {
				offsetSectors, _ = strconv.ParseInt(match[5], 10, 64)
			}
			d.Extents = append(d.Extents, ExtentDescriptor{
				Access:        parseAccessToken(match[1]),
				SizeSectors:   sizeSectors,
				Type:          extentType,
				Filename:      match[4],
				OffsetSectors: offsetSectors,
			})
		}
	}

	if !sawHeader {
		return nil, &NotAVmdkError{Path: "<stream>"}
	}
	return d, nil
}

// Serialize renders the descriptor back to its textual form.
func (d *Descriptor) Serialize() []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Disk DescriptorFile\n")
	fmt.Fprintf(&sb, "version=%d\n", d.Version)
	fmt.Fprintf(&sb, "encoding=\"%s\"\n", d.Encoding)
	fmt.Fprintf(&sb, "CID=%08x\n", d.ContentID)
	fmt.Fprintf(&sb, "parentCID=%08x\n", d.ParentContentID)
	if d.ParentFileNameHint != "" {
		fmt.Fprintf(&sb, "parentFileNameHint=\"%s\"\n", d.ParentFileNameHint)
	}
	fmt.Fprintf(&sb, "createType=\"%s\"\n", d.CreateType)

	fmt.Fprintf(&sb, "\n# Extent description\n")
	for _, e := range d.Extents {
		tok := accessTokens[e.Access]
		if e.OffsetSectors != 0 {
			fmt.Fprintf(&sb, "%s %d %s \"%s\" %d\n", tok, e.SizeSectors, e.Type, e.Filename, e.OffsetSectors)
		} else {
			fmt.Fprintf(&sb, "%s %d %s \"%s\"\n", tok, e.SizeSectors, e.Type, e.Filename)
		}
	}

	fmt.Fprintf(&sb, "\n# The Disk Data Base\n#DDB\n")
	fmt.Fprintf(&sb, "ddb.virtualHWVersion = \"4\"\n")
	fmt.Fprintf(&sb, "ddb.adapterType = \"%s\"\n", d.AdapterType)
	fmt.Fprintf(&sb, "ddb.geometry.cylinders = \"%d\"\n", d.Geometry.Cylinders)
	fmt.Fprintf(&sb, "ddb.geometry.heads = \"%d\"\n", d.Geometry.Heads)
	fmt.Fprintf(&sb, "ddb.geometry.sectors = \"%d\"\n", d.Geometry.Sectors)
	if d.UniqueID != "" {
		fmt.Fprintf(&sb, "ddb.uuid = \"%s\"\n", d.UniqueID)
	}

	return []byte(sb.String())
}
