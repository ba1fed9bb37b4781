package listing

import "bizrwanda/internal/models"

// Field describes one input of the listing form.
type Field struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Input     string   `json:"input"`
	Required  bool     `json:"required"`
	MinLength int      `json:"minLength,omitempty"`
	Options   []string `json:"options,omitempty"`
}

// Schema lists the fields shown for one post type and owner type.
type Schema struct {
	PostType  models.PostType `json:"postType"`
	OwnerType string          `json:"ownerType"`
	Fields    []Field         `json:"fields"`
}

var (
	jobTypes         = []string{"full_time", "part_time", "contract", "internship", "temporary", "volunteer"}
	experienceLevels = []string{"entry", "mid", "senior", "executive"}
)

// FormSchema decides which field groups the listing form renders. It is a
// pure function of the post type and owner type.
func FormSchema(postType models.PostType, ownerType string) Schema {
	if ownerType != OwnerIndividual {
		ownerType = OwnerCompany
	}
	fields := []Field{
		{Name: "postType", Label: "Post type", Input: "select", Required: true, Options: postTypeNames()},
		{Name: "title", Label: "Title", Input: "text", Required: true, MinLength: 3},
		{Name: "location", Label: "Location", Input: "text", Required: true},
		{Name: "category", Label: "Category", Input: "select", Required: true},
		{Name: "description", Label: "Description", Input: "textarea", Required: true},
		{Name: "ownerType", Label: "Posted by", Input: "radio", Required: true, Options: []string{OwnerCompany, OwnerIndividual}},
	}

	if ownerType == OwnerCompany {
		fields = append(fields, Field{Name: "companyId", Label: "Company", Input: "select", Required: true})
	} else {
		fields = append(fields,
			Field{Name: "individualName", Label: "Your name", Input: "text", Required: true},
			Field{Name: "individualContact", Label: "Contact", Input: "text"},
		)
	}

	switch postType {
	case models.PostTypeAuction:
		fields = append(fields,
			Field{Name: "auctionDate", Label: "Auction date", Input: "date", Required: true},
			Field{Name: "auctionTime", Label: "Auction time", Input: "time"},
			Field{Name: "viewingDates", Label: "Viewing dates", Input: "text"},
			Field{Name: "auctionItems", Label: "Items (one per line)", Input: "textarea", Required: true},
			Field{Name: "auctionRequirements", Label: "Bidder requirements", Input: "textarea", Required: true, MinLength: 5},
		)
	case models.PostTypeTender:
		fields = append(fields,
			Field{Name: "tenderDeadline", Label: "Submission deadline", Input: "date", Required: true},
			Field{Name: "tenderRequirements", Label: "Requirements", Input: "textarea", Required: true, MinLength: 5},
			Field{Name: "tenderDocuments", Label: "Documents", Input: "textarea"},
		)
	case models.PostTypeAnnouncement:
		fields = append(fields,
			Field{Name: "announcementType", Label: "Announcement type", Input: "text"},
		)
	default:
		postType = models.PostTypeJob
		fields = append(fields,
			Field{Name: "type", Label: "Employment type", Input: "select", Required: true, Options: jobTypes},
			Field{Name: "experienceLevel", Label: "Experience level", Input: "select", Required: true, Options: experienceLevels},
			Field{Name: "salary", Label: "Salary", Input: "text"},
			Field{Name: "currency", Label: "Currency", Input: "text"},
			Field{Name: "requirements", Label: "Requirements", Input: "textarea", Required: true, MinLength: 10},
			Field{Name: "responsibilities", Label: "Responsibilities", Input: "textarea"},
		)
	}

	// The description length applies to the resolved type.
	fields[4].MinLength = descriptionMinLength[postType]

	return Schema{PostType: postType, OwnerType: ownerType, Fields: fields}
}

// VisibleFields returns only the field names FormSchema would render.
func VisibleFields(postType models.PostType, ownerType string) []string {
	schema := FormSchema(postType, ownerType)
	names := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		names[i] = f.Name
	}
	return names
}

func postTypeNames() []string {
	names := make([]string, len(models.PostTypes))
	for i, p := range models.PostTypes {
		names[i] = string(p)
	}
	return names
}
