package mem

import "github.com/nyxkernel/nyx/internal/log"

// EnableMMUFunc is the architecture stub described in spec: it programs the memory-attribute
// indirection register, translation control, installs the root table pointer, invalidates TLBs,
// issues the required barriers, and finally sets the translation-enable bit with instruction and
// data caches left off. It is the one externally-supplied primitive this package depends on; the
// real implementation is architecture-specific assembly that cannot run here.
type EnableMMUFunc func(rootPTR uintptr) error

// SimulatedEnableMMU returns an EnableMMUFunc that logs the sequence of register writes a real
// architecture stub would issue, in order, and reports success. It stands in for the assembly
// routine in tests and in the demo binary, where no real translation hardware exists to program.
func SimulatedEnableMMU(logger *log.Logger) EnableMMUFunc {
	return func(rootPTR uintptr) error {
		logger.Debug("mmu: programming MAIR_EL1 (normal cacheable, device-nGnRE)")
		logger.Debug("mmu: programming TCR_EL1 (4Kib granule, T0SZ for low VA range)")
		logger.Debug("mmu: installing TTBR0_EL1", log.Uint64("root", uint64(rootPTR)))
		logger.Debug("mmu: invalidating TLBs, issuing DSB+ISB")
		logger.Debug("mmu: setting SCTLR_EL1.M, caches left off")

		return nil
	}
}
