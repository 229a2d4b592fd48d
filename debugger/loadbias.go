package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/antRainZ/minigdb/elf"
)

// computeLoadBias determines the offset the kernel added between the
// file's static addresses and where the binary actually landed in the
// tracee's address space. Statically-linked, non-PIE executables (ET_EXEC)
// load at their link-time addresses and so carry a zero bias; position-
// independent executables (ET_DYN) are relocated by the loader and the
// bias must be read back from the live process.
func (d *Debugger) computeLoadBias() error {
	if d.elf.Header.Type != elf.ET_DYN {
		d.loadBias = 0
		return nil
	}
	base, err := firstMappedAddress(d.pid)
	if err != nil {
		return err
	}
	d.loadBias = base
	return nil
}

// firstMappedAddress reads /proc/PID/maps and returns the start address
// of its first mapping, which for an ET_DYN executable's own image is the
// load bias the kernel applied.
func firstMappedAddress(pid int) (uint64, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return 0, &OSError{Op: "reading /proc/PID/maps", Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, &OSError{Op: "reading /proc/PID/maps", Err: err}
		}
		return 0, fmt.Errorf("debugger: /proc/%d/maps was empty", pid)
	}
	line := scanner.Text()
	dash := strings.IndexByte(line, '-')
	if dash < 0 {
		return 0, fmt.Errorf("debugger: malformed /proc/PID/maps line %q", line)
	}
	base, err := strconv.ParseUint(line[:dash], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("debugger: malformed /proc/PID/maps address %q: %w", line[:dash], err)
	}
	return base, nil
}
