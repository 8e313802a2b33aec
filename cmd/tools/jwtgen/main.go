package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"vendor-registry-api/internal/auth"
	"vendor-registry-api/internal/config"
)

func main() {
	var (
		operator   = flag.String("operator", "", "Operator identity recorded as the token subject")
		roles      = flag.String("roles", auth.RoleOperator, "Comma-separated list of roles")
		expiryMins = flag.Int("expiry", 15, "Token expiry in minutes")
		secret     = flag.String("secret", "", "JWT secret (overrides JWT_SECRET env var)")
		issuer     = flag.String("issuer", "", "JWT issuer (overrides JWT_ISS env var)")
		audience   = flag.String("audience", "", "JWT audience (overrides JWT_AUD env var)")
	)
	flag.Parse()

	if *operator == "" {
		log.Fatal("-operator is required")
	}

	cfg := config.Load()
	if *secret != "" {
		cfg.JWTSecret = *secret
	}
	if *issuer != "" {
		cfg.JWTIssuer = *issuer
	}
	if *audience != "" {
		cfg.JWTAudience = *audience
	}

	roleList := strings.Split(*roles, ",")
	for i, role := range roleList {
		roleList[i] = strings.TrimSpace(role)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, time.Duration(*expiryMins)*time.Minute)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatalf("Invalid JWT configuration: %v", err)
	}

	token, err := jwtManager.GenerateToken(*operator, roleList)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Printf("Operator: %s\n", *operator)
	fmt.Printf("Roles: %s\n", strings.Join(roleList, ", "))
	fmt.Printf("Expiry: %d minutes\n", *expiryMins)
	fmt.Printf("Issuer: %s\n", cfg.JWTIssuer)
	fmt.Printf("Audience: %s\n", cfg.JWTAudience)
	fmt.Printf("\nToken:\n%s\n\n", token)

	fmt.Printf("Usage example:\n")
	fmt.Printf("curl -X POST -H \"Authorization: Bearer %s\" -d '{\"confirm\":\"vendordetails\"}' http://localhost:%s%s/admin/reset\n", token, cfg.Port, cfg.BasePath)
}
