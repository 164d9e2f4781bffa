package dynamo

// DynamoDB attribute and index names shared by the repositories and Bootstrap.
const (
	fieldName     = "name"
	fieldCreation = "creation"
	fieldForUser  = "for_user"
	fieldOwner    = "owner"
	fieldFromUser = "from_user"
	fieldClientID = "client_id"

	// fallbackSeenField is written when the install has no seen attribute configured.
	fallbackSeenField = "seen"

	indexForUserCreation  = "for_user-creation-index"
	indexOwnerCreation    = "owner-creation-index"
	indexFromUserCreation = "from_user-creation-index"

	// maxQueryLimit bounds the page size of a single index Query.
	maxQueryLimit = 1000
)
