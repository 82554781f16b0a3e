package vmdk

import "testing"

func TestPlanHostedSparseLayoutInvariants(t *testing.T) {
	sizes := []int64{
		1 * OneMiB,
		100 * OneMiB,
		1 * OneGiB,
		3*OneGiB + 7,
	}
	for _, size := range sizes {
		for _, descLen := range []int64{0, 10 * OneKiB} {
			layout := PlanHostedSparseLayout(size, descLen)

			if layout.GrainSizeSectors < 8 {
				t.Fatalf("size=%d descLen=%d: grain size %d below minimum 8", size, descLen, layout.GrainSizeSectors)
			}
			if layout.RGDStartSector >= layout.RedundantGTStartSector ||
				layout.RedundantGTStartSector >= layout.GDStartSector ||
				layout.GDStartSector >= layout.GTStartSector ||
				layout.GTStartSector >= layout.DataStartSector {
				t.Fatalf("size=%d descLen=%d: regions out of order: %+v", size, descLen, layout)
			}
			dataStartBytes := layout.DataStartSector * SectorSize
			grainBytes := layout.GrainSizeSectors * SectorSize
			if dataStartBytes%grainBytes != 0 {
				t.Fatalf("size=%d descLen=%d: data start %d not grain-aligned (grain %d)", size, descLen, dataStartBytes, grainBytes)
			}
		}
	}
}

func TestPlanHostedSparseLayoutNoDescriptor(t *testing.T) {
	layout := PlanHostedSparseLayout(100*OneMiB, 0)
	if layout.DescriptorStartSector != 0 {
		t.Errorf("expected descriptor start 0 when no descriptor embedded, got %d", layout.DescriptorStartSector)
	}
}

func TestPlanHostedSparseLayoutWithDescriptor(t *testing.T) {
	layout := PlanHostedSparseLayout(100*OneMiB, 10*OneKiB)
	if layout.DescriptorStartSector != 1 {
		t.Errorf("expected descriptor start sector 1, got %d", layout.DescriptorStartSector)
	}
}
