package mem

import (
	"fmt"
	"unsafe"
)

// Config parameterizes the identity map the builder constructs: the RAM window to map as normal
// memory, the device page to map for the UART, and the virtual address used for the single
// demonstration leaf mapping.
type Config struct {
	RAMStart uintptr // Page-aligned start of the RAM window, identity-mapped.
	RAMEnd   uintptr // Page-aligned end of the RAM window (exclusive).
	UARTBase uintptr // 2 MiB-aligned base of the UART's device page.
	TestVA   uintptr // Virtual address for the single demonstration leaf page; outside RAMStart..RAMEnd.
}

// Tables holds the statically allocated page-table pages for a three-level (plus one leaf-table)
// translation: L0 -> L1 -> {L2 for the UART window, L2 for the RAM window, L2 for the test window}
// -> L3 for the one demonstration page. Every table is distinct storage, matching the spec's
// invariant that a table descriptor never aliases another table's backing memory.
type Tables struct {
	L0     PageTable
	L1     PageTable
	L2UART PageTable
	L2RAM  PageTable
	L2Test PageTable
	L3Test PageTable
}

func tableAddr(pt *PageTable) uintptr { return uintptr(unsafe.Pointer(pt)) }

// Build zeros every table page and installs:
//
//   - a device-attributed, execute-never block descriptor identity-mapping the UART's 2 MiB window;
//   - normal-memory, inner-shareable block descriptors identity-mapping the configured RAM window in
//     2 MiB strides; and
//   - a single leaf page descriptor mapping cfg.TestVA to frame0, reached through its own L2 and L3
//     tables, proving leaf-level translation independently of the identity-mapped windows.
//
// It returns the physical address of the root (L0) table and the configured test virtual address.
func (t *Tables) Build(frame0 Frame, cfg Config) (rootPTR, testVA uintptr, err error) {
	if cfg.RAMStart%PageSize != 0 || cfg.RAMEnd%PageSize != 0 {
		return 0, 0, fmt.Errorf("mem: build tables: RAM window must be page-aligned: [%#x, %#x)",
			cfg.RAMStart, cfg.RAMEnd)
	}

	if cfg.TestVA >= cfg.RAMStart && cfg.TestVA < cfg.RAMEnd {
		return 0, 0, fmt.Errorf("mem: build tables: test VA %#x falls inside the RAM identity window", cfg.TestVA)
	}

	t.L0.Zero()
	t.L1.Zero()
	t.L2UART.Zero()
	t.L2RAM.Zero()
	t.L2Test.Zero()
	t.L3Test.Zero()

	// L0[0] -> L1, covering the low three 1 GiB windows used below.
	t.L0.Set(l0Index(cfg.UARTBase), tableDescriptor(tableAddr(&t.L1)))

	// L1 entries -> per-window L2 tables.
	t.L1.Set(l1Index(cfg.UARTBase), tableDescriptor(tableAddr(&t.L2UART)))
	t.L1.Set(l1Index(cfg.RAMStart), tableDescriptor(tableAddr(&t.L2RAM)))
	t.L1.Set(l1Index(cfg.TestVA), tableDescriptor(tableAddr(&t.L2Test)))

	// UART: one 2 MiB device block, execute-never, identity-mapped.
	t.L2UART.Set(l2Index(cfg.UARTBase), blockDescriptor(cfg.UARTBase, AttrIdxDevice|AF|PXN|UXN))

	// RAM: identity-mapped 2 MiB blocks across the whole window, normal memory, inner-shareable.
	for va := cfg.RAMStart; va < cfg.RAMEnd; va += BlockSize {
		t.L2RAM.Set(l2Index(va), blockDescriptor(va, AttrIdxNormal|AF|SHInner))
	}

	// Test mapping: L2 slot is a table descriptor pointing at a dedicated L3, whose one entry is a
	// page descriptor for frame0.
	t.L2Test.Set(l2Index(cfg.TestVA), tableDescriptor(tableAddr(&t.L3Test)))
	t.L3Test.Set(l3Index(cfg.TestVA), pageDescriptor(frame0, AttrIdxNormal|AF|SHInner))

	return tableAddr(&t.L0), cfg.TestVA, nil
}
