package memory

import (
	"context"
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
)

// SeedReport counts what SeedSamples wrote.
type SeedReport struct {
	Projects  int
	Inquiries int
	Profile   bool
}

// SeedSamples loads the sample catalog through the stores. Each collection
// is only filled when it is empty, so calling it twice is harmless.
func (r *Registry) SeedSamples(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	ids := make([]string, 0, len(sampleProjects))
	if r.projects.size() == 0 {
		for _, project := range SampleProjects() {
			id, err := r.projects.Insert(ctx, project)
			if err != nil {
				return report, err
			}
			ids = append(ids, id)
		}
		report.Projects = len(ids)
	}

	if _, found, err := r.profile.Get(ctx); err != nil {
		return report, err
	} else if !found {
		profile := SampleProfile()
		for i, idx := range testimonialProjects {
			if idx < len(ids) {
				profile.Testimonials[i].ProjectID = ids[idx]
			}
		}
		if _, err := r.profile.Save(ctx, profile); err != nil {
			return report, err
		}
		report.Profile = true
	}

	if r.inquiries.size() == 0 {
		for _, inq := range SampleInquiries() {
			if _, err := r.inquiries.Insert(ctx, inq); err != nil {
				return report, err
			}
			report.Inquiries++
		}
	}
	return report, nil
}

// SampleProjects returns fresh copies of the sample catalog, without ids.
func SampleProjects() []domain.Project {
	out := make([]domain.Project, len(sampleProjects))
	for i, p := range sampleProjects {
		out[i] = cloneProject(p)
	}
	return out
}

// SampleProfile returns the sample woodmaker profile.
func SampleProfile() domain.WoodmakerProfile {
	p := sampleProfile
	p.Specialties = append([]string(nil), p.Specialties...)
	p.Certifications = append([]string(nil), p.Certifications...)
	p.WorkshopImages = append([]string(nil), p.WorkshopImages...)
	p.Testimonials = append([]domain.Testimonial(nil), p.Testimonials...)
	return p
}

// SampleInquiries returns the sample contact form submissions.
func SampleInquiries() []domain.Inquiry {
	return append([]domain.Inquiry(nil), sampleInquiries...)
}

var sampleProjects = []domain.Project{
	{
		Title: domain.LocalizedContent{
			EN: "Modern Oak Dining Table",
			AR: "طاولة طعام حديثة من البلوط",
			FR: "Table à manger moderne en chêne",
			DZ: "طاولة ماكل حديثة من البلوط",
		},
		Description: domain.LocalizedContent{
			EN: "A stunning modern dining table crafted from premium oak wood. Features clean lines and a minimalist design perfect for contemporary homes.",
			AR: "طاولة طعام حديثة رائعة مصنوعة من خشب البلوط الفاخر. تتميز بخطوط نظيفة وتصميم بسيط مثالي للمنازل المعاصرة.",
			FR: "Une magnifique table à manger moderne fabriquée en chêne de qualité supérieure. Présente des lignes épurées et un design minimaliste parfait pour les maisons contemporaines.",
			DZ: "طاولة ماكل حديثة مزيانة معاونة من البلوط الفاخر. كتتميز بخطوط نضيفة وتصميم بسيط مثالي للدار المعاصرة.",
		},
		Category: domain.CategoryDining,
		Style:    domain.StyleModern,
		WoodType: domain.WoodOak,
		Images: []string{
			"https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=800",
			"https://images.unsplash.com/photo-1533090481720-856c6e3c1fdc?w=800",
		},
		Dimensions: domain.Dimensions{Width: 200, Height: 75, Depth: 100, Unit: domain.UnitCentimetre},
		Price:      2500,
		Featured:   true,
		Available:  true,
		Tags:       []string{"dining", "oak", "modern", "minimalist"},
	},
	{
		Title: domain.LocalizedContent{
			EN: "Traditional Walnut Bookshelf",
			AR: "رف كتب تقليدي من الجوز",
			FR: "Bibliothèque traditionnelle en noyer",
			DZ: "رف كتب تقليدي من الجوز",
		},
		Description: domain.LocalizedContent{
			EN: "Elegant traditional bookshelf made from rich walnut wood. Features intricate carvings and multiple storage compartments.",
			AR: "رف كتب أنيق تقليدي مصنوع من خشب الجوز الغني. يتميز بنقوش معقدة ومساحات تخزين متعددة.",
			FR: "Bibliothèque traditionnelle élégante en noyer riche. Présente des sculptures complexes et plusieurs compartiments de rangement.",
			DZ: "رف كتب مزيان تقليدي معاون من الجوز الغني. كتتميز بنقوش معقدة ومساحات تخزين متعددة.",
		},
		Category: domain.CategoryOffice,
		Style:    domain.StyleTraditional,
		WoodType: domain.WoodWalnut,
		Images: []string{
			"https://images.unsplash.com/photo-1594620302200-9a762244a156?w=800",
			"https://images.unsplash.com/photo-1588279102920-e8631ffaec7a?w=800",
		},
		Dimensions: domain.Dimensions{Width: 120, Height: 180, Depth: 35, Unit: domain.UnitCentimetre},
		Price:      1800,
		Featured:   true,
		Available:  true,
		Tags:       []string{"bookshelf", "walnut", "traditional", "office"},
	},
	{
		Title: domain.LocalizedContent{
			EN: "Minimalist Cherry Coffee Table",
			AR: "طاولة قهوة بسيطة من الكرز",
			FR: "Table basse minimaliste en cerisier",
			DZ: "طاولة قهوة بسيطة من الكرز",
		},
		Description: domain.LocalizedContent{
			EN: "Sleek minimalist coffee table crafted from cherry wood. Perfect centerpiece for modern living rooms.",
			AR: "طاولة قهوة أنيقة بسيطة مصنوعة من خشب الكرز. قطعة مركزية مثالية لغرف المعيشة الحديثة.",
			FR: "Table basse minimaliste élégante en cerisier. Pièce centrale parfaite pour les salons modernes.",
			DZ: "طاولة قهوة مزيانة بسيطة معاونة من الكرز. قطعة مركزية مثالية لصالونات الحديثة.",
		},
		Category:   domain.CategoryLiving,
		Style:      domain.StyleMinimalist,
		WoodType:   domain.WoodCherry,
		Images:     []string{"https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=800"},
		Dimensions: domain.Dimensions{Width: 120, Height: 45, Depth: 60, Unit: domain.UnitCentimetre},
		Price:      1200,
		Available:  true,
		Tags:       []string{"coffee", "cherry", "minimalist", "living"},
	},
	{
		Title: domain.LocalizedContent{
			EN: "Luxury Mahogany Bed Frame",
			AR: "إطار سرير فاخر من الماهوغاني",
			FR: "Cadre de lit de luxe en acajou",
			DZ: "إطار سرير فاخر من الماهوغاني",
		},
		Description: domain.LocalizedContent{
			EN: "Opulent bed frame made from premium mahogany wood. Features ornate headboard and sturdy construction.",
			AR: "إطار سرير فاخر مصنوع من خشب الماهوغاني الفاخر. يتميز برأس سرير مزخرف وبناء قوي.",
			FR: "Cadre de lit opulent en acajou de qualité supérieure. Présente une tête de lit ornementale et une construction solide.",
			DZ: "إطار سرير فاخر معاون من الماهوغاني الفاخر. كتتميز برأس سرير مزخرف وبناء قوي.",
		},
		Category:   domain.CategoryBedroom,
		Style:      domain.StyleLuxury,
		WoodType:   domain.WoodMahogany,
		Images:     []string{"https://images.unsplash.com/photo-1505693416388-ac5ce068fe85?w=800"},
		Dimensions: domain.Dimensions{Width: 160, Height: 120, Depth: 200, Unit: domain.UnitCentimetre},
		Price:      3500,
		Featured:   true,
		Available:  true,
		Tags:       []string{"bed", "mahogany", "luxury", "bedroom"},
	},
}

// testimonialProjects maps each sample testimonial to an index in sampleProjects.
var testimonialProjects = []int{0, 1}

var sampleProfile = domain.WoodmakerProfile{
	Name: "Kiro Woodworks",
	Bio: domain.LocalizedContent{
		EN: "Master craftsman with over 15 years of experience creating bespoke luxury furniture. Specializing in traditional and modern designs using premium hardwoods.",
		AR: "حرفي ماهر مع أكثر من 15 عامًا من الخبرة في إنشاء أثاث فاخر مخصص. متخصص في التصاميم التقليدية والحديثة باستخدام الأخشاب الفاخرة.",
		FR: "Artisan maître avec plus de 15 ans d'expérience dans la création de meubles de luxe sur mesure. Spécialisé dans les designs traditionnels et modernes utilisant des bois nobles.",
		DZ: "صانع ماهر مع أكثر من 15 عام من الخبرة فتصنيع الموبيليا الفاخرة المخصوصة. متخصص فالتصاميم التقليدية والحديثة باستعمال الأخشاب الفاخرة.",
	},
	Philosophy: domain.LocalizedContent{
		EN: "Every piece tells a story. We believe in creating furniture that becomes part of your family's legacy, combining timeless design with exceptional craftsmanship.",
		AR: "كل قطعة تحكي قصة. نؤمن بإنشاء أثاث يصبح جزءًا من تراث عائلتك، مع الجمع بين التصميم الخالد والحرفية الاستثنائية.",
		FR: "Chaque pièce raconte une histoire. Nous croyons en créant des meubles qui deviennent partie de l'héritage de votre famille, combinant design intemporel et artisanat exceptionnel.",
		DZ: "كل قطعة كتعاود قصة. كنؤمنو بصنع موبيليا كتوليو جزء من تراث عائلتك، مع الجمع بين التصميم الخالد والحرفية الاستثنائية.",
	},
	ExperienceYears: 15,
	Specialties:     []string{"Custom Furniture", "Traditional Joinery", "Modern Design", "Wood Restoration"},
	Certifications:  []string{"Master Craftsman Certificate", "Sustainable Woodworking", "Furniture Design Excellence"},
	WorkshopImages: []string{
		"https://images.unsplash.com/photo-1581539250439-c96689b516dd?w=800",
		"https://images.unsplash.com/photo-1565372195458-9de0b320ef04?w=800",
	},
	Contact: domain.ContactInfo{
		Email: "contact@kiro-luxury.com",
		Phone: "+212600000000",
		Address: domain.LocalizedContent{
			EN: "123 Artisan Street, Marrakech, Morocco",
			AR: "123 شارع الحرفيين، مراكش، المغرب",
			FR: "123 Rue des Artisans, Marrakech, Maroc",
			DZ: "123 زنقة الحرفيين، مراكش، المغرب",
		},
		WorkingHours: domain.LocalizedContent{
			EN: "Monday - Friday: 9:00 AM - 6:00 PM, Saturday: 10:00 AM - 4:00 PM",
			AR: "الاثنين - الجمعة: 9:00 صباحًا - 6:00 مساءً، السبت: 10:00 صباحًا - 4:00 مساءً",
			FR: "Lundi - Vendredi: 9h00 - 18h00, Samedi: 10h00 - 16h00",
			DZ: "الاثنين - الجمعة: 9:00 صباحًا - 6:00 مساءً، السبت: 10:00 صباحًا - 4:00 مساءً",
		},
	},
	SocialLinks: domain.SocialLinks{
		Instagram: "https://instagram.com/kiro_luxury",
		Facebook:  "https://facebook.com/kiroluxury",
		WhatsApp:  "+212600000000",
		Website:   "https://kiro-luxury.com",
	},
	Testimonials: []domain.Testimonial{
		{
			ID:         "1",
			ClientName: "Fatima Zahra",
			Content: domain.LocalizedContent{
				EN: "Exceptional craftsmanship and attention to detail. The dining table exceeded all expectations!",
				AR: "حرفية استثنائية واهتمام بالتفاصيل. طاولة الطعام تجاوزت كل التوقعات!",
				FR: "Artisanat exceptionnel et attention aux détails. La table à manger a dépassé toutes les attentes!",
				DZ: "حرفية استثنائية واهتمام بالتفاصيل. طاولة الطعام تجاوزت كل التوقعات!",
			},
			Rating: 5,
			Date:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:         "2",
			ClientName: "Jean Dupont",
			Content: domain.LocalizedContent{
				EN: "Beautiful work and professional service. Highly recommend for custom furniture needs.",
				AR: "عمل جميل وخدمة احترافية. أوصي بشدة لاحتياجات الأثاث المخصص.",
				FR: "Beau travail et service professionnel. Je recommande vivement pour les besoins en meubles sur mesure.",
				DZ: "شغل مزيان وخدمة احترافية. نصح بزاف لحاجيات الموبيليا المخصوصة.",
			},
			Rating: 5,
			Date:   time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC),
		},
	},
}

var sampleInquiries = []domain.Inquiry{
	{
		ClientName: "Ahmed Al-Farsi",
		Email:      "ahmed@example.com",
		Phone:      "+212600000001",
		Subject:    "Custom dining table inquiry",
		Message:    "I would like to order a custom dining table similar to your modern oak design, but in walnut wood. Can you provide a quote?",
		Status:     domain.InquiryStatusPending,
		Priority:   domain.PriorityMedium,
	},
	{
		ClientName: "Sophie Martin",
		Email:      "sophie@example.com",
		Phone:      "+33600000002",
		Subject:    "Bookshelf customization",
		Message:    "Interested in the traditional walnut bookshelf but need it in custom dimensions. Height should be 200cm instead of 180cm.",
		Status:     domain.InquiryStatusInProgress,
		Priority:   domain.PriorityHigh,
	},
}
