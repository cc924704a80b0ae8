package utils

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"strings"

	"github.com/hirehub-dev/hirehub/backend/internal/auth"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
)

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda", "David", "Elizabeth",
	"William", "Barbara", "Richard", "Susan", "Joseph", "Jessica", "Thomas", "Sarah", "Priya", "Wei",
	"Carlos", "Fatima", "Yuki", "Olga", "Ahmed", "Chen", "Aisha", "Lucas", "Sofia", "Mateo",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Patel", "Nguyen",
}

func GenerateRandomName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

var companyPrefixes = []string{"Blue", "Bright", "North", "Quantum", "Silver", "Rapid", "Open", "Green", "Iron", "Cloud"}
var companySuffixes = []string{"Labs", "Systems", "Works", "Technologies", "Solutions", "Analytics", "Studios", "Networks"}

func GenerateRandomCompanyName() string {
	return companyPrefixes[rand.Intn(len(companyPrefixes))] + " " + companySuffixes[rand.Intn(len(companySuffixes))]
}

var digits = "0123456789"

// GenerateEmailFromName lowercases the name, joins its parts with a dot and
// appends a few random digits so repeated names stay unique.
func GenerateEmailFromName(name string, emailDomainName string) string {
	local := strings.ToLower(strings.Join(strings.Fields(name), "."))

	digitsLength := rand.Intn(3) + 2
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local + "@" + emailDomainName
}

var SkillPool = []string{
	"go", "python", "javascript", "typescript", "react", "node", "sql", "postgres", "mongodb", "docker",
	"kubernetes", "aws", "gcp", "css", "html", "java", "rust", "redis", "graphql", "figma",
}

var educations = []string{
	"BSc Computer Science", "MSc Software Engineering", "BA Economics", "Bootcamp graduate", "BEng Electrical Engineering",
}

func GenerateRandomUser(role domain.Role, password string, emailDomainName string) (*domain.User, error) {
	name := GenerateRandomName()
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        GenerateEmailFromName(name, emailDomainName),
		PasswordHash: passwordHash,
		Role:         role,
		Skills:       []string{},
	}

	switch role {
	case domain.RoleSeeker:
		user.Skills = GenerateRandomSubset(SkillPool, 5)
		user.Education = educations[rand.Intn(len(educations))]
	case domain.RoleEmployer:
		user.CompanyName = GenerateRandomCompanyName()
		user.CompanyDescription = fmt.Sprintf("%s builds software for teams around the world.", user.CompanyName)
	}

	return user, nil
}

var jobLevels = []string{"Junior", "Mid-level", "Senior", "Lead", "Staff"}
var jobTitles = []string{
	"Backend Engineer", "Frontend Developer", "Full Stack Developer", "Data Analyst", "DevOps Engineer",
	"Mobile Developer", "QA Engineer", "Product Designer", "Site Reliability Engineer", "Machine Learning Engineer",
}
var locations = []string{"Remote", "Berlin", "London", "New York", "Bangalore", "Singapore", "Toronto", "San Francisco"}
var jobTypes = []domain.JobType{domain.JobTypeFullTime, domain.JobTypePartTime, domain.JobTypeInternship, domain.JobTypeContract}

func GenerateRandomJob(employer *domain.User) *domain.Job {
	title := jobLevels[rand.Intn(len(jobLevels))] + " " + jobTitles[rand.Intn(len(jobTitles))]
	skills := GenerateRandomSubset(SkillPool, 4)
	low := (rand.Intn(12) + 4) * 10

	companyName := employer.CompanyName
	if companyName == "" {
		companyName = domain.DefaultCompanyName
	}

	return &domain.Job{
		Title:       title,
		Description: fmt.Sprintf("%s is hiring a %s. You will work with %s.", companyName, title, strings.Join(skills, ", ")),
		Skills:      skills,
		Location:    locations[rand.Intn(len(locations))],
		Salary:      fmt.Sprintf("$%dk - $%dk", low, low+rand.Intn(5)*10+10),
		JobType:     jobTypes[rand.Intn(len(jobTypes))],
		EmployerID:  employer.ID,
		CompanyName: companyName,
	}
}

// GenerateRandomSubset shuffles a copy of arr with Fisher-Yates and returns
// between 1 and limit elements of it.
func GenerateRandomSubset[T any](arr []T, limit int) []T {
	arrCopy := append([]T{}, arr...)

	for i := len(arrCopy) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	if limit > len(arrCopy) {
		limit = len(arrCopy)
	}
	if limit <= 0 {
		return arrCopy[:0]
	}
	return arrCopy[:rand.Intn(limit)+1]
}

// GenerateRandomOTP returns a numeric code of the given length from crypto/rand.
func GenerateRandomOTP(length int) (string, error) {
	otp := make([]byte, length)
	for i := range otp {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		otp[i] = digits[n.Int64()]
	}
	return string(otp), nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
