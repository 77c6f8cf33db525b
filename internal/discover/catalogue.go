package discover

import (
	"sort"

	"conftrack/internal/record"
)

// Venue is a catalogue entry for a known conference series.
type Venue struct {
	Acronym  string
	Name     string
	Category string
}

// Catalogue lists the hardware and systems venues worth suggesting to
// someone who tracks this field.
var Catalogue = []Venue{
	{"ISCA", "International Symposium on Computer Architecture", "Architecture"},
	{"MICRO", "International Symposium on Microarchitecture", "Architecture"},
	{"HPCA", "International Symposium on High-Performance Computer Architecture", "Architecture"},
	{"ASPLOS", "Architectural Support for Programming Languages and Operating Systems", "Architecture"},
	{"ICCD", "International Conference on Computer Design", "Architecture"},
	{"ICS", "International Conference on Supercomputing", "Architecture"},
	{"PACT", "International Conference on Parallel Architectures and Compilation Techniques", "Architecture"},
	{"CGO", "International Symposium on Code Generation and Optimization", "Architecture"},

	{"ISSCC", "International Solid-State Circuits Conference", "VLSI/Circuits"},
	{"VLSI", "VLSI Symposia (Circuits and Technology)", "VLSI/Circuits"},
	{"CICC", "Custom Integrated Circuits Conference", "VLSI/Circuits"},
	{"ESSCIRC", "European Solid-State Circuits Conference", "VLSI/Circuits"},
	{"GLSVLSI", "Great Lakes Symposium on VLSI", "VLSI/Circuits"},
	{"ISCAS", "International Symposium on Circuits and Systems", "VLSI/Circuits"},
	{"A-SSCC", "Asian Solid-State Circuits Conference", "VLSI/Circuits"},
	{"RFIC", "Radio Frequency Integrated Circuits Symposium", "VLSI/Circuits"},
	{"ISVLSI", "IEEE Computer Society Annual Symposium on VLSI", "VLSI/Circuits"},

	{"DAC", "Design Automation Conference", "Design Automation"},
	{"ICCAD", "International Conference on Computer-Aided Design", "Design Automation"},
	{"DATE", "Design, Automation & Test in Europe", "Design Automation"},
	{"ASPDAC", "Asia and South Pacific Design Automation Conference", "Design Automation"},
	{"ISPD", "International Symposium on Physical Design", "Design Automation"},
	{"CODES+ISSS", "International Conference on Hardware/Software Codesign and System Synthesis", "Design Automation"},
	{"ISQED", "International Symposium on Quality Electronic Design", "Design Automation"},

	{"ISLPED", "International Symposium on Low Power Electronics and Design", "Power/Energy"},
	{"PATMOS", "International Workshop on Power and Timing Modeling, Optimization and Simulation", "Power/Energy"},

	{"FPGA", "ACM/SIGDA International Symposium on Field-Programmable Gate Arrays", "FPGA"},
	{"FCCM", "IEEE Symposium on Field-Programmable Custom Computing Machines", "FPGA"},
	{"FPL", "International Conference on Field Programmable Logic and Applications", "FPGA"},
	{"FPT", "International Conference on Field-Programmable Technology", "FPGA"},

	{"ITC", "International Test Conference", "Testing"},
	{"VTS", "VLSI Test Symposium", "Testing"},
	{"ATS", "Asian Test Symposium", "Testing"},
	{"ETS", "European Test Symposium", "Testing"},

	{"SOSP", "Symposium on Operating Systems Principles", "Systems"},
	{"OSDI", "USENIX Symposium on Operating Systems Design and Implementation", "Systems"},
	{"EUROSYS", "European Conference on Computer Systems", "Systems"},
	{"ATC", "USENIX Annual Technical Conference", "Systems"},
	{"FAST", "USENIX Conference on File and Storage Technologies", "Systems"},
	{"NSDI", "USENIX Symposium on Networked Systems Design and Implementation", "Systems"},

	{"HOST", "Hardware Oriented Security and Trust", "Security"},
	{"CHES", "Cryptographic Hardware and Embedded Systems", "Security"},

	{"HOTCHIPS", "Hot Chips: A Symposium on High Performance Chips", "Emerging"},
	{"HOTOS", "Workshop on Hot Topics in Operating Systems", "Emerging"},

	{"ISPASS", "IEEE International Symposium on Performance Analysis of Systems and Software", "Performance"},
	{"IISWC", "IEEE International Symposium on Workload Characterization", "Performance"},

	{"MEMSYS", "International Symposium on Memory Systems", "Memory/Storage"},
	{"IMW", "IEEE International Memory Workshop", "Memory/Storage"},

	{"MLSys", "Conference on Machine Learning and Systems", "AI/ML Hardware"},
	{"MLCAD", "International Workshop on Machine Learning for CAD", "AI/ML Hardware"},

	{"EMSOFT", "International Conference on Embedded Software", "Embedded"},
	{"RTAS", "Real-Time and Embedded Technology and Applications Symposium", "Embedded"},
	{"RTSS", "Real-Time Systems Symposium", "Embedded"},
	{"CASES", "International Conference on Compilers, Architecture, and Synthesis for Embedded Systems", "Embedded"},
}

// Categories returns the catalogue's categories in sorted order.
func Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range Catalogue {
		if !seen[v.Category] {
			seen[v.Category] = true
			out = append(out, v.Category)
		}
	}
	sort.Strings(out)
	return out
}

// ByCategory groups the catalogue by category.
func ByCategory() map[string][]Venue {
	out := map[string][]Venue{}
	for _, v := range Catalogue {
		out[v.Category] = append(out[v.Category], v)
	}
	return out
}

// Untracked returns catalogue venues whose edition for year is not in
// the database yet, in catalogue order.
func Untracked(db map[string]record.Record, year int) []Venue {
	var out []Venue
	for _, v := range Catalogue {
		if _, ok := db[record.Key(v.Acronym, year)]; !ok {
			out = append(out, v)
		}
	}
	return out
}
