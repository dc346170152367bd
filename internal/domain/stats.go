package domain

// ProjectStats summarises the catalog for the dashboard.
type ProjectStats struct {
	TotalProjects  int
	Featured       int
	Available      int
	TotalViews     int64
	TotalInquiries int64
	ByCategory     map[Category]int
	ByStyle        map[Style]int
	ByWoodType     map[WoodType]int
}

// InquiryStats counts inquiries per status.
type InquiryStats struct {
	Total    int
	ByStatus map[InquiryStatus]int
}

// NewProjectStats returns zeroed stats with allocated breakdown maps.
func NewProjectStats() ProjectStats {
	return ProjectStats{
		ByCategory: make(map[Category]int),
		ByStyle:    make(map[Style]int),
		ByWoodType: make(map[WoodType]int),
	}
}

// Add folds p into the totals.
func (s *ProjectStats) Add(p Project) {
	s.TotalProjects++
	if p.Featured {
		s.Featured++
	}
	if p.Available {
		s.Available++
	}
	s.TotalViews += p.ViewCount
	s.TotalInquiries += p.InquiryCount
	if s.ByCategory == nil {
		s.ByCategory = make(map[Category]int)
	}
	if s.ByStyle == nil {
		s.ByStyle = make(map[Style]int)
	}
	if s.ByWoodType == nil {
		s.ByWoodType = make(map[WoodType]int)
	}
	s.ByCategory[p.Category]++
	s.ByStyle[p.Style]++
	s.ByWoodType[p.WoodType]++
}

func NewInquiryStats() InquiryStats {
	return InquiryStats{ByStatus: make(map[InquiryStatus]int)}
}

// Add counts inq under its status.
func (s *InquiryStats) Add(inq Inquiry) {
	if s.ByStatus == nil {
		s.ByStatus = make(map[InquiryStatus]int)
	}
	s.Total++
	s.ByStatus[inq.Status]++
}
